package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"whatsbot/database"
	"whatsbot/models"
)

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository bound to a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends a new ledger entry
func (r *TransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	detailsJSON, err := json.Marshal(txn.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction details: %w", err)
	}

	query := `
		INSERT INTO transactions (user_id, type, amount, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		txn.UserID,
		txn.Type,
		txn.Amount,
		detailsJSON,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record transaction for user %s: %w", txn.UserID, err)
	}
	return nil
}

// GetByUser returns the most recent ledger entries for a user
func (r *TransactionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, details, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var detailsJSON []byte
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount, &detailsJSON, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &txn.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction details: %w", err)
			}
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// PurgeAll deletes the entire transaction log. Only the owner reset uses this.
func (r *TransactionRepository) PurgeAll(ctx context.Context) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge transactions: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteOlderThan removes ledger entries created before the cutoff.
// Used by the retention job.
func (r *TransactionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune transactions: %w", err)
	}
	return result.RowsAffected(), nil
}
