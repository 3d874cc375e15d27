package service

import (
	"context"
	"fmt"

	"whatsbot/events"
	"whatsbot/models"
)

// accountService implements the AccountService interface
type accountService struct {
	uowFactory UnitOfWorkFactory
	settings   SettingsService
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, settings SettingsService) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		settings:   settings,
	}
}

// EnsureAccount creates or touches the account for a user. Called on every
// inbound command, so the upsert doubles as the last_seen/commands_used
// bookkeeping.
func (s *accountService) EnsureAccount(ctx context.Context, userID string) (*models.Account, error) {
	cfg := s.settings.Snapshot()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().Ensure(ctx, userID, cfg.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure account for user %s: %w", userID, err)
	}

	// First touch of a fresh row: the upsert set commands_used to 1.
	if account.CommandsUsed == 1 {
		uow.EventBus().Publish(events.AccountCreatedEvent{
			UserID:          userID,
			StartingBalance: account.Balance,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetAccount returns the account without touching it, or nil when absent
func (s *accountService) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %s: %w", userID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// History returns the most recent ledger entries for a user
func (s *accountService) History(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	entries, err := uow.TransactionRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for user %s: %w", userID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// Leaderboard returns the top accounts ranked by net worth
func (s *accountService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	accounts, err := uow.AccountRepository().Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(accounts))
	for i, account := range accounts {
		entries = append(entries, &models.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   account.UserID,
			Balance:  account.Balance,
			Bank:     account.Bank,
			NetWorth: account.NetWorth(),
		})
	}
	return entries, nil
}
