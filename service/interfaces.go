package service

import (
	"context"
	"time"

	"whatsbot/events"
	"whatsbot/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Ensure creates the account on first reference or touches
	// last_seen/commands_used, atomically
	Ensure(ctx context.Context, userID string, startingBalance int64) (*models.Account, error)

	// GetByUserID retrieves an account, or nil when absent
	GetByUserID(ctx context.Context, userID string) (*models.Account, error)

	// GetByUserIDForUpdate retrieves an account holding an exclusive row lock
	GetByUserIDForUpdate(ctx context.Context, userID string) (*models.Account, error)

	// Update writes back all mutable account fields
	Update(ctx context.Context, account *models.Account) error

	// Top returns the accounts with the highest net worth
	Top(ctx context.Context, limit int) ([]*models.Account, error)

	// ResetAll restores every account to the starting balance
	ResetAll(ctx context.Context, startingBalance int64) (int64, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Record appends a new ledger entry
	Record(ctx context.Context, txn *models.Transaction) error

	// GetByUser returns the most recent ledger entries for a user
	GetByUser(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)

	// PurgeAll deletes the entire ledger (owner reset only)
	PurgeAll(ctx context.Context) (int64, error)

	// DeleteOlderThan removes entries created before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsRepository defines the interface for persisted settings
type SettingsRepository interface {
	// GetAll returns every key/value pair in a namespace
	GetAll(ctx context.Context, namespace string) (map[string]string, error)

	// Set upserts a single key in a namespace
	Set(ctx context.Context, namespace, key, value string) error

	// SetIfAbsent inserts a key only when missing
	SetIfAbsent(ctx context.Context, namespace, key, value string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	SettingsRepository() SettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AccountService defines the interface for account bookkeeping
type AccountService interface {
	// EnsureAccount creates or touches the account for a user, idempotently
	EnsureAccount(ctx context.Context, userID string) (*models.Account, error)

	// GetAccount returns the account without touching it, or nil
	GetAccount(ctx context.Context, userID string) (*models.Account, error)

	// Leaderboard returns the top accounts by net worth
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// History returns the most recent ledger entries for a user
	History(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
}

// EconomyService is the transactional operation engine. Every method runs
// as one atomic unit of work guarded by the per-user command lock.
type EconomyService interface {
	Work(ctx context.Context, userID string) (*models.WorkResult, error)
	Daily(ctx context.Context, userID string) (*models.DailyResult, error)
	Transfer(ctx context.Context, fromUserID, toUserID string, amount int64) (*models.TransferResult, error)
	// Deposit and Withdraw accept all=true to move the full wallet or bank
	Deposit(ctx context.Context, userID string, amount int64, all bool) (*models.BankResult, error)
	Withdraw(ctx context.Context, userID string, amount int64, all bool) (*models.BankResult, error)
	Gamble(ctx context.Context, userID string, amount int64) (*models.GambleResult, error)
	Rob(ctx context.Context, robberID, targetID string) (*models.RobResult, error)
	AdminAdd(ctx context.Context, actorID, targetID string, amount int64) (*models.AdminAdjustResult, error)
	AdminRemove(ctx context.Context, actorID, targetID string, amount int64) (*models.AdminAdjustResult, error)
	AdminSetBalance(ctx context.Context, actorID, targetID string, amount int64) (*models.AdminAdjustResult, error)
	// Reset restores all accounts to defaults and purges the ledger
	Reset(ctx context.Context, actorID string) (accounts int64, purged int64, err error)
}

// SettingsService owns the economy tunables: persisted rows, an in-memory
// write-through cache, and immutable snapshots for engine operations.
type SettingsService interface {
	// Load reads the namespace and seeds missing defaults. Called once at startup.
	Load(ctx context.Context) error

	// Snapshot returns an immutable copy of the current settings
	Snapshot() models.EconomySettings

	// Set validates, persists, then updates the cache
	Set(ctx context.Context, key, value string) error

	// All returns the raw key/value view for the admin panel
	All() map[string]string
}
