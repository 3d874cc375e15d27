package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"whatsbot/bot/middleware"
	"whatsbot/service"
)

func newSchedulerFixture(retentionDays string) (*Scheduler, *service.MockTransactionRepository, *service.MockUnitOfWorkFactory) {
	factory := new(service.MockUnitOfWorkFactory)
	uow := new(service.MockUnitOfWork)
	txnRepo := new(service.MockTransactionRepository)
	settingsRepo := new(service.MockSettingsRepository)
	uow.SetRepositories(new(service.MockAccountRepository), txnRepo, settingsRepo, new(service.MockEventPublisher))
	factory.On("Create").Return(uow)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	settings := service.NewSettingsService(factory)
	if retentionDays != "" {
		settingsRepo.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		_ = settings.Set(context.Background(), "ledger_retention_days", retentionDays)
	}

	s := NewScheduler(service.NewLockManager(), middleware.NewRateLimiter(10, time.Minute), settings, factory, 2*time.Minute)
	return s, txnRepo, factory
}

func TestScheduler_PruneLedger_SkipsWhenRetentionDisabled(t *testing.T) {
	s, txnRepo, _ := newSchedulerFixture("")

	require.NoError(t, s.pruneLedger(context.Background()))
	txnRepo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
}

func TestScheduler_PruneLedger_DeletesPastCutoff(t *testing.T) {
	s, txnRepo, _ := newSchedulerFixture("30")

	txnRepo.On("DeleteOlderThan", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		want := time.Now().UTC().AddDate(0, 0, -30)
		return cutoff.Sub(want).Abs() < time.Minute
	})).Return(int64(7), nil)

	require.NoError(t, s.pruneLedger(context.Background()))
	txnRepo.AssertExpectations(t)
}

func TestScheduler_MustAddPanicsOnBadSchedule(t *testing.T) {
	s, _, _ := newSchedulerFixture("")

	require.Panics(t, func() { s.mustAdd("not a schedule", func() {}) })
	require.NotPanics(t, func() { s.mustAdd("* * * * *", func() {}) })
}
