package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"whatsbot/database"
	"whatsbot/models"
)

const accountColumns = `
	user_id, balance, bank, total_earned, total_spent,
	work_count, rob_count, streak, longest_streak, total_attendances,
	commands_used, last_daily, last_work_at, last_rob_at, last_gamble_at,
	first_seen, last_seen, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.UserID,
		&a.Balance,
		&a.Bank,
		&a.TotalEarned,
		&a.TotalSpent,
		&a.WorkCount,
		&a.RobCount,
		&a.Streak,
		&a.LongestStreak,
		&a.TotalAttendances,
		&a.CommandsUsed,
		&a.LastDaily,
		&a.LastWorkAt,
		&a.LastRobAt,
		&a.LastGambleAt,
		&a.FirstSeen,
		&a.LastSeen,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Ensure creates the account on first reference or touches last_seen and
// commands_used on subsequent ones, in a single atomic statement. Safe
// under concurrent first-touch by the same user.
func (r *AccountRepository) Ensure(ctx context.Context, userID string, startingBalance int64) (*models.Account, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (user_id, balance, commands_used)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET last_seen = NOW(),
		    commands_used = users.commands_used + 1,
		    updated_at = NOW()
		RETURNING %s
	`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, startingBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure account for user %s: %w", userID, err)
	}
	return account, nil
}

// GetByUserID retrieves an account by user ID, or nil when absent
func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = $1`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %s: %w", userID, err)
	}
	return account, nil
}

// GetByUserIDForUpdate retrieves an account with an exclusive row lock.
// The lock is held until the surrounding transaction commits or rolls
// back; callers locking two rows must lock in ascending user-id order.
func (r *AccountRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = $1 FOR UPDATE`, accountColumns)

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account for user %s: %w", userID, err)
	}
	return account, nil
}

// Update writes back all mutable account fields. Callers must hold the
// row lock from GetByUserIDForUpdate within the same transaction.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE users
		SET balance = $2, bank = $3, total_earned = $4, total_spent = $5,
		    work_count = $6, rob_count = $7, streak = $8, longest_streak = $9,
		    total_attendances = $10, last_daily = $11, last_work_at = $12,
		    last_rob_at = $13, last_gamble_at = $14, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		account.UserID,
		account.Balance,
		account.Bank,
		account.TotalEarned,
		account.TotalSpent,
		account.WorkCount,
		account.RobCount,
		account.Streak,
		account.LongestStreak,
		account.TotalAttendances,
		account.LastDaily,
		account.LastWorkAt,
		account.LastRobAt,
		account.LastGambleAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account for user %s: %w", account.UserID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account for user %s not found", account.UserID)
	}
	return nil
}

// Top returns the accounts with the highest net worth (wallet + bank)
func (r *AccountRepository) Top(ctx context.Context, limit int) ([]*models.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE balance + bank > 0
		ORDER BY balance + bank DESC
		LIMIT $1
	`, accountColumns)

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// ResetAll restores every account to the starting balance and clears all
// counters and cooldowns. Rows are kept, not deleted.
func (r *AccountRepository) ResetAll(ctx context.Context, startingBalance int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = $1, bank = 0, total_earned = 0, total_spent = 0,
		    work_count = 0, rob_count = 0, streak = 0, longest_streak = 0,
		    total_attendances = 0, last_daily = NULL, last_work_at = NULL,
		    last_rob_at = NULL, last_gamble_at = NULL, updated_at = NOW()
	`

	result, err := r.q.Exec(ctx, query, startingBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to reset accounts: %w", err)
	}
	return result.RowsAffected(), nil
}
