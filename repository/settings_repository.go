package repository

import (
	"context"
	"fmt"

	"whatsbot/database"
)

// SettingsRepository implements the SettingsRepository interface
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// newSettingsRepositoryWithTx creates a settings repository bound to a transaction
func newSettingsRepositoryWithTx(tx queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// GetAll returns every key/value pair in a namespace
func (r *SettingsRepository) GetAll(ctx context.Context, namespace string) (map[string]string, error) {
	query := `SELECT key, value FROM settings WHERE namespace = $1`

	rows, err := r.q.Query(ctx, query, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for namespace %s: %w", namespace, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return values, nil
}

// Set upserts a single key in a namespace
func (r *SettingsRepository) Set(ctx context.Context, namespace, key, value string) error {
	query := `
		INSERT INTO settings (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", namespace, key, err)
	}
	return nil
}

// SetIfAbsent inserts a key only when it does not exist yet. Used to
// seed defaults without clobbering admin-tuned values.
func (r *SettingsRepository) SetIfAbsent(ctx context.Context, namespace, key, value string) error {
	query := `
		INSERT INTO settings (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("failed to seed %s.%s: %w", namespace, key, err)
	}
	return nil
}
