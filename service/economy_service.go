package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"whatsbot/events"
	"whatsbot/models"
)

// Authorizer answers capability checks for admin operations.
type Authorizer interface {
	IsAdmin(userID string) bool
	IsOwner(userID string) bool
}

// economyService implements the EconomyService interface. Every operation
// runs under the per-user command lock and a single database transaction;
// balance rows are read with FOR UPDATE so concurrent operations on the
// same account serialize at the database.
type economyService struct {
	uowFactory UnitOfWorkFactory
	locks      *LockManager
	settings   SettingsService
	auth       Authorizer

	// Swappable for tests
	now       func() time.Time
	randFloat func() float64
	randInt   func(n int64) int64
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory, locks *LockManager, settings SettingsService, auth Authorizer) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		locks:      locks,
		settings:   settings,
		auth:       auth,
		now:        func() time.Time { return time.Now().UTC() },
		randFloat:  rand.Float64,
		randInt:    rand.Int64N,
	}
}

// randRange returns a uniform random integer in [min, max].
func (s *economyService) randRange(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + s.randInt(max-min+1)
}

// mutateAccount runs fn against the caller's row-locked account inside one
// unit of work, then writes the account back and commits. fn appends
// ledger entries and events through the unit of work.
func (s *economyService) mutateAccount(ctx context.Context, userID string, fn func(uow UnitOfWork, account *models.Account) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock account for user %s: %w", userID, err)
	}
	if account == nil {
		return ErrTargetNotFound
	}

	if err := fn(uow, account); err != nil {
		return err
	}

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update account for user %s: %w", userID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// lockPair row-locks two accounts in ascending user-id order so concurrent
// opposite-direction operations cannot deadlock.
func lockPair(ctx context.Context, uow UnitOfWork, idA, idB string) (map[string]*models.Account, error) {
	ids := []string{idA, idB}
	sort.Strings(ids)

	out := make(map[string]*models.Account, 2)
	for _, id := range ids {
		account, err := uow.AccountRepository().GetByUserIDForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to lock account for user %s: %w", id, err)
		}
		out[id] = account
	}
	return out, nil
}

func recordAndPublish(ctx context.Context, uow UnitOfWork, txn *models.Transaction, oldBalance, newBalance int64) error {
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          txn.UserID,
		OldBalance:      oldBalance,
		NewBalance:      newBalance,
		TransactionType: txn.Type,
		ChangeAmount:    txn.Amount,
	})
	return nil
}

// Work completes a work shift: random job, random pay, wallet credit.
func (s *economyService) Work(ctx context.Context, userID string) (*models.WorkResult, error) {
	var result *models.WorkResult
	err := s.locks.WithLock(userID, "work", func() error {
		cfg := s.settings.Snapshot()
		now := s.now()

		return s.mutateAccount(ctx, userID, func(uow UnitOfWork, account *models.Account) error {
			cooldown := time.Duration(cfg.WorkCooldownMinutes) * time.Minute
			if ok, remaining := CheckCooldown(account.LastWorkAt, cooldown, now); !ok {
				return &CooldownActiveError{Action: "work", Remaining: remaining}
			}

			job := models.Jobs[s.randInt(int64(len(models.Jobs)))]
			pay := s.randRange(job.MinPay, job.MaxPay)

			oldBalance := account.Balance
			account.Balance += pay
			account.TotalEarned += pay
			account.WorkCount++
			account.LastWorkAt = &now

			err := recordAndPublish(ctx, uow, &models.Transaction{
				UserID:  userID,
				Type:    models.TransactionTypeWork,
				Amount:  pay,
				Details: map[string]any{"job": job.Name},
			}, oldBalance, account.Balance)
			if err != nil {
				return err
			}

			result = &models.WorkResult{
				JobName:    job.Name,
				Earnings:   pay,
				NewBalance: account.Balance,
				WorkCount:  account.WorkCount,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Daily claims the once-per-UTC-day reward and advances the streak.
// Streaks are calendar-date based: claiming on the date after the previous
// claim extends the streak, any larger gap resets it to 1.
func (s *economyService) Daily(ctx context.Context, userID string) (*models.DailyResult, error) {
	var result *models.DailyResult
	err := s.locks.WithLock(userID, "daily", func() error {
		cfg := s.settings.Snapshot()
		// The stamp lands in a DATE column and is encoded in its own
		// location, so it must be UTC before it reaches the store.
		now := s.now().UTC()

		return s.mutateAccount(ctx, userID, func(uow UnitOfWork, account *models.Account) error {
			if account.LastDaily != nil && sameDate(*account.LastDaily, now) {
				nextMidnight := now.Truncate(24 * time.Hour).AddDate(0, 0, 1)
				return &CooldownActiveError{Action: "daily", Remaining: nextMidnight.Sub(now)}
			}

			if account.LastDaily != nil && isYesterday(*account.LastDaily, now) {
				account.Streak++
			} else {
				account.Streak = 1
			}
			if account.Streak > account.LongestStreak {
				account.LongestStreak = account.Streak
			}

			amount := s.randRange(cfg.DailyMin, cfg.DailyMax)

			oldBalance := account.Balance
			account.Balance += amount
			account.TotalEarned += amount
			account.TotalAttendances++
			account.LastDaily = &now

			err := recordAndPublish(ctx, uow, &models.Transaction{
				UserID:  userID,
				Type:    models.TransactionTypeDaily,
				Amount:  amount,
				Details: map[string]any{"streak": account.Streak},
			}, oldBalance, account.Balance)
			if err != nil {
				return err
			}

			result = &models.DailyResult{
				Amount:        amount,
				NewBalance:    account.Balance,
				Streak:        account.Streak,
				LongestStreak: account.LongestStreak,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer moves wallet funds between two users atomically. Both rows are
// locked in ascending user-id order and the paired ledger entries land in
// the same transaction, so the sum of balances is conserved.
func (s *economyService) Transfer(ctx context.Context, fromUserID, toUserID string, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, NewValidationError("transfer amount must be positive")
	}
	if fromUserID == toUserID {
		return nil, ErrSelfTarget
	}

	var result *models.TransferResult
	err := s.locks.WithLock(fromUserID, "transfer", func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback() // No-op if already committed

		accounts, err := lockPair(ctx, uow, fromUserID, toUserID)
		if err != nil {
			return err
		}
		sender, recipient := accounts[fromUserID], accounts[toUserID]
		if sender == nil {
			return ErrTargetNotFound
		}
		if recipient == nil {
			return ErrTargetNotFound
		}

		if sender.Balance < amount {
			return &InsufficientFundsError{Source: "wallet", Have: sender.Balance, Need: amount}
		}

		oldSender, oldRecipient := sender.Balance, recipient.Balance
		sender.Balance -= amount
		sender.TotalSpent += amount
		recipient.Balance += amount
		recipient.TotalEarned += amount

		if err := uow.AccountRepository().Update(ctx, sender); err != nil {
			return fmt.Errorf("failed to update sender account: %w", err)
		}
		if err := uow.AccountRepository().Update(ctx, recipient); err != nil {
			return fmt.Errorf("failed to update recipient account: %w", err)
		}

		err = recordAndPublish(ctx, uow, &models.Transaction{
			UserID:  fromUserID,
			Type:    models.TransactionTypeTransferOut,
			Amount:  -amount,
			Details: map[string]any{"to": toUserID},
		}, oldSender, sender.Balance)
		if err != nil {
			return err
		}
		err = recordAndPublish(ctx, uow, &models.Transaction{
			UserID:  toUserID,
			Type:    models.TransactionTypeTransferIn,
			Amount:  amount,
			Details: map[string]any{"from": fromUserID},
		}, oldRecipient, recipient.Balance)
		if err != nil {
			return err
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		result = &models.TransferResult{
			Amount:           amount,
			RecipientID:      toUserID,
			NewBalance:       sender.Balance,
			RecipientBalance: recipient.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Deposit moves wallet funds into the bank. With all=true the full wallet
// moves and amount is ignored.
func (s *economyService) Deposit(ctx context.Context, userID string, amount int64, all bool) (*models.BankResult, error) {
	if !all && amount <= 0 {
		return nil, NewValidationError("deposit amount must be positive")
	}

	var result *models.BankResult
	err := s.locks.WithLock(userID, "bank", func() error {
		return s.mutateAccount(ctx, userID, func(uow UnitOfWork, account *models.Account) error {
			moving := amount
			if all {
				moving = account.Balance
			}
			if moving <= 0 {
				return NewValidationError("you have nothing to deposit")
			}
			if account.Balance < moving {
				return &InsufficientFundsError{Source: "wallet", Have: account.Balance, Need: moving}
			}

			oldBalance := account.Balance
			account.Balance -= moving
			account.Bank += moving

			// Amount is the signed wallet delta: deposits debit the wallet.
			err := recordAndPublish(ctx, uow, &models.Transaction{
				UserID:  userID,
				Type:    models.TransactionTypeDeposit,
				Amount:  -moving,
				Details: map[string]any{"bank": account.Bank},
			}, oldBalance, account.Balance)
			if err != nil {
				return err
			}

			result = &models.BankResult{
				Amount:     moving,
				NewBalance: account.Balance,
				NewBank:    account.Bank,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Withdraw moves bank funds back into the wallet. With all=true the full
// bank moves and amount is ignored.
func (s *economyService) Withdraw(ctx context.Context, userID string, amount int64, all bool) (*models.BankResult, error) {
	if !all && amount <= 0 {
		return nil, NewValidationError("withdrawal amount must be positive")
	}

	var result *models.BankResult
	err := s.locks.WithLock(userID, "bank", func() error {
		return s.mutateAccount(ctx, userID, func(uow UnitOfWork, account *models.Account) error {
			moving := amount
			if all {
				moving = account.Bank
			}
			if moving <= 0 {
				return NewValidationError("you have nothing to withdraw")
			}
			if account.Bank < moving {
				return &InsufficientFundsError{Source: "bank", Have: account.Bank, Need: moving}
			}

			oldBalance := account.Balance
			account.Bank -= moving
			account.Balance += moving

			err := recordAndPublish(ctx, uow, &models.Transaction{
				UserID:  userID,
				Type:    models.TransactionTypeWithdrawal,
				Amount:  moving,
				Details: map[string]any{"bank": account.Bank},
			}, oldBalance, account.Balance)
			if err != nil {
				return err
			}

			result = &models.BankResult{
				Amount:     moving,
				NewBalance: account.Balance,
				NewBank:    account.Bank,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Gamble resolves a bet against the configured win chance. A win credits
// floor(bet*multiplier)-bet profit; a loss debits the full bet.
func (s *economyService) Gamble(ctx context.Context, userID string, amount int64) (*models.GambleResult, error) {
	var result *models.GambleResult
	err := s.locks.WithLock(userID, "gamble", func() error {
		cfg := s.settings.Snapshot()
		now := s.now()

		if amount < cfg.GambleMinBet || amount > cfg.GambleMaxBet {
			return NewValidationError("bet must be between %d and %d", cfg.GambleMinBet, cfg.GambleMaxBet)
		}

		return s.mutateAccount(ctx, userID, func(uow UnitOfWork, account *models.Account) error {
			if account.Balance < amount {
				return &InsufficientFundsError{Source: "wallet", Have: account.Balance, Need: amount}
			}

			won := s.randFloat() < cfg.GambleWinChance
			oldBalance := account.Balance
			account.LastGambleAt = &now

			var txn *models.Transaction
			var profit int64
			if won {
				payout := int64(float64(amount) * cfg.GambleMultiplier)
				profit = payout - amount
				account.Balance += profit
				account.TotalEarned += profit
				txn = &models.Transaction{
					UserID:  userID,
					Type:    models.TransactionTypeGambleWin,
					Amount:  profit,
					Details: map[string]any{"bet": amount},
				}
			} else {
				account.Balance -= amount
				account.TotalSpent += amount
				txn = &models.Transaction{
					UserID:  userID,
					Type:    models.TransactionTypeGambleLoss,
					Amount:  -amount,
					Details: map[string]any{"bet": amount},
				}
			}

			if err := recordAndPublish(ctx, uow, txn, oldBalance, account.Balance); err != nil {
				return err
			}

			result = &models.GambleResult{
				Won:        won,
				BetAmount:  amount,
				Profit:     profit,
				NewBalance: account.Balance,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Rob attempts to steal from another user's wallet. The rob cooldown is
// stamped once all validations pass, before the success roll, so a failed
// attempt still consumes the cooldown while a rejected one does not.
func (s *economyService) Rob(ctx context.Context, robberID, targetID string) (*models.RobResult, error) {
	if robberID == targetID {
		return nil, ErrSelfTarget
	}

	var result *models.RobResult
	err := s.locks.WithLock(robberID, "rob", func() error {
		cfg := s.settings.Snapshot()
		now := s.now()

		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback() // No-op if already committed

		accounts, err := lockPair(ctx, uow, robberID, targetID)
		if err != nil {
			return err
		}
		robber, target := accounts[robberID], accounts[targetID]
		if robber == nil || target == nil {
			return ErrTargetNotFound
		}

		cooldown := time.Duration(cfg.RobCooldownMinutes) * time.Minute
		if ok, remaining := CheckCooldown(robber.LastRobAt, cooldown, now); !ok {
			return &CooldownActiveError{Action: "rob", Remaining: remaining}
		}
		if robber.Balance < cfg.RobMinRobberBalance {
			return NewValidationError("you need at least %d in your wallet to rob someone", cfg.RobMinRobberBalance)
		}
		if target.Balance < cfg.RobMinTargetBalance {
			return NewValidationError("that target is too poor to rob")
		}
		// The steal pool can still round down to zero when the admin
		// lowered the target threshold; a pool of zero must reject, not
		// steal the minimum of 1.
		maxSteal := int64(float64(target.Balance) * cfg.RobMaxStealPercent)
		if maxSteal < 1 {
			return NewValidationError("that target is too poor to rob")
		}

		// Attempt is committed: the cooldown applies win or lose.
		robber.LastRobAt = &now
		robber.RobCount++

		oldRobber, oldTarget := robber.Balance, target.Balance
		success := s.randFloat() < cfg.RobSuccessRate

		if success {
			stolen := s.randRange(1, maxSteal)

			robber.Balance += stolen
			robber.TotalEarned += stolen
			target.Balance -= stolen

			if err := uow.AccountRepository().Update(ctx, robber); err != nil {
				return fmt.Errorf("failed to update robber account: %w", err)
			}
			if err := uow.AccountRepository().Update(ctx, target); err != nil {
				return fmt.Errorf("failed to update target account: %w", err)
			}

			err = recordAndPublish(ctx, uow, &models.Transaction{
				UserID:  robberID,
				Type:    models.TransactionTypeRobSuccess,
				Amount:  stolen,
				Details: map[string]any{"target": targetID},
			}, oldRobber, robber.Balance)
			if err != nil {
				return err
			}
			err = recordAndPublish(ctx, uow, &models.Transaction{
				UserID:  targetID,
				Type:    models.TransactionTypeRobbed,
				Amount:  -stolen,
				Details: map[string]any{"by": robberID},
			}, oldTarget, target.Balance)
			if err != nil {
				return err
			}

			result = &models.RobResult{
				Success:       true,
				TargetID:      targetID,
				Amount:        stolen,
				NewBalance:    robber.Balance,
				TargetBalance: target.Balance,
			}
		} else {
			// Penalty never pushes the wallet below zero.
			penalty := cfg.RobFailPenalty
			if penalty > robber.Balance {
				penalty = robber.Balance
			}
			robber.Balance -= penalty
			robber.TotalSpent += penalty

			if err := uow.AccountRepository().Update(ctx, robber); err != nil {
				return fmt.Errorf("failed to update robber account: %w", err)
			}

			err = recordAndPublish(ctx, uow, &models.Transaction{
				UserID:  robberID,
				Type:    models.TransactionTypeRobFail,
				Amount:  -penalty,
				Details: map[string]any{"target": targetID},
			}, oldRobber, robber.Balance)
			if err != nil {
				return err
			}

			result = &models.RobResult{
				Success:       false,
				TargetID:      targetID,
				Penalty:       penalty,
				NewBalance:    robber.Balance,
				TargetBalance: target.Balance,
			}
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// adminAdjust applies a capability-checked mutation to the target's wallet.
func (s *economyService) adminAdjust(ctx context.Context, actorID, targetID string, fn func(uow UnitOfWork, account *models.Account) error) (*models.AdminAdjustResult, error) {
	if !s.auth.IsAdmin(actorID) {
		return nil, ErrNotAdmin
	}

	var result *models.AdminAdjustResult
	err := s.locks.WithLock(targetID, "admin_adjust", func() error {
		return s.mutateAccount(ctx, targetID, func(uow UnitOfWork, account *models.Account) error {
			if err := fn(uow, account); err != nil {
				return err
			}
			result = &models.AdminAdjustResult{
				TargetID:   targetID,
				NewBalance: account.Balance,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdminAdd credits the target's wallet.
func (s *economyService) AdminAdd(ctx context.Context, actorID, targetID string, amount int64) (*models.AdminAdjustResult, error) {
	if amount <= 0 {
		return nil, NewValidationError("amount must be positive")
	}
	var added int64
	result, err := s.adminAdjust(ctx, actorID, targetID, func(uow UnitOfWork, account *models.Account) error {
		oldBalance := account.Balance
		account.Balance += amount
		added = amount
		return recordAndPublish(ctx, uow, &models.Transaction{
			UserID:  targetID,
			Type:    models.TransactionTypeAdminAdd,
			Amount:  amount,
			Details: map[string]any{"by": actorID},
		}, oldBalance, account.Balance)
	})
	if err != nil {
		return nil, err
	}
	result.Amount = added
	return result, nil
}

// AdminRemove debits the target's wallet, clamped at zero.
func (s *economyService) AdminRemove(ctx context.Context, actorID, targetID string, amount int64) (*models.AdminAdjustResult, error) {
	if amount <= 0 {
		return nil, NewValidationError("amount must be positive")
	}
	var removed int64
	result, err := s.adminAdjust(ctx, actorID, targetID, func(uow UnitOfWork, account *models.Account) error {
		removed = amount
		if removed > account.Balance {
			removed = account.Balance
		}
		oldBalance := account.Balance
		account.Balance -= removed
		return recordAndPublish(ctx, uow, &models.Transaction{
			UserID:  targetID,
			Type:    models.TransactionTypeAdminRemove,
			Amount:  -removed,
			Details: map[string]any{"by": actorID},
		}, oldBalance, account.Balance)
	})
	if err != nil {
		return nil, err
	}
	result.Amount = removed
	return result, nil
}

// AdminSetBalance overwrites the target's wallet balance.
func (s *economyService) AdminSetBalance(ctx context.Context, actorID, targetID string, amount int64) (*models.AdminAdjustResult, error) {
	if amount < 0 {
		return nil, NewValidationError("balance cannot be negative")
	}
	result, err := s.adminAdjust(ctx, actorID, targetID, func(uow UnitOfWork, account *models.Account) error {
		oldBalance := account.Balance
		account.Balance = amount
		return recordAndPublish(ctx, uow, &models.Transaction{
			UserID:  targetID,
			Type:    models.TransactionTypeAdminSetBalance,
			Amount:  amount - oldBalance,
			Details: map[string]any{"by": actorID},
		}, oldBalance, account.Balance)
	})
	if err != nil {
		return nil, err
	}
	result.Amount = amount
	return result, nil
}

// Reset restores every account to the starting balance and purges the
// ledger. Owner only; runs as one transaction so a partial reset is
// impossible.
func (s *economyService) Reset(ctx context.Context, actorID string) (int64, int64, error) {
	if !s.auth.IsOwner(actorID) {
		return 0, 0, ErrNotOwner
	}

	cfg := s.settings.Snapshot()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	accounts, err := uow.AccountRepository().ResetAll(ctx, cfg.StartingBalance)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to reset accounts: %w", err)
	}
	purged, err := uow.TransactionRepository().PurgeAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge ledger: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return accounts, purged, nil
}
