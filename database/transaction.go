package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// WithTransaction runs fn inside a transaction. The transaction commits
// when fn returns nil and rolls back when fn returns an error or panics.
// Repository code normally goes through the unit of work instead; this is
// for callers that need a bare transaction scope.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, db.Pool, fn)
}
