package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"whatsbot/bot/middleware"
	"whatsbot/service"
)

// Scheduler runs the background maintenance jobs: the stale command lock
// sweep, the rate limiter prune and the ledger retention prune.
type Scheduler struct {
	cron       *cron.Cron
	locks      *service.LockManager
	limiter    *middleware.RateLimiter
	settings   service.SettingsService
	uowFactory service.UnitOfWorkFactory
	staleAfter time.Duration
}

// NewScheduler creates the maintenance scheduler. Schedules run in UTC;
// the economy's day boundary is UTC as well.
func NewScheduler(locks *service.LockManager, limiter *middleware.RateLimiter, settings service.SettingsService, uowFactory service.UnitOfWorkFactory, staleAfter time.Duration) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		locks:      locks,
		limiter:    limiter,
		settings:   settings,
		uowFactory: uowFactory,
		staleAfter: staleAfter,
	}
}

// Start registers and launches all background jobs.
func (s *Scheduler) Start(ctx context.Context) {
	// Stale lock sweep every minute
	s.mustAdd("* * * * *", func() {
		if released := s.locks.Sweep(s.staleAfter); released > 0 {
			log.WithField("released", released).Warn("[CRON] Released stale command locks")
		}
	})

	// Rate limiter map cleanup every ten minutes
	s.mustAdd("*/10 * * * *", func() {
		if pruned := s.limiter.Prune(); pruned > 0 {
			log.WithField("pruned", pruned).Debug("[CRON] Pruned idle rate limiter entries")
		}
	})

	// Ledger retention prune shortly after the UTC day boundary
	s.mustAdd("10 0 * * *", func() {
		if err := s.pruneLedger(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ledger prune failed")
		}
	})

	s.cron.Start()
	log.Info("Maintenance scheduler started (UTC)")
}

// mustAdd registers a job and panics on a malformed schedule: that is a
// wiring bug, not a runtime condition.
func (s *Scheduler) mustAdd(spec string, fn func()) {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		panic(fmt.Sprintf("invalid cron schedule %q: %v", spec, err))
	}
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Maintenance scheduler stopped")
}

// pruneLedger deletes ledger entries older than the configured retention
// window. A retention of zero days means keep everything.
func (s *Scheduler) pruneLedger(ctx context.Context) error {
	retentionDays := s.settings.Snapshot().LedgerRetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -int(retentionDays))

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback() // No-op if already committed

	pruned, err := uow.TransactionRepository().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if pruned > 0 {
		log.WithFields(log.Fields{
			"pruned":        pruned,
			"retentionDays": retentionDays,
		}).Info("[CRON] Pruned old ledger entries")
	}
	return nil
}
