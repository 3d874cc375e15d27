package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"whatsbot/models"
)

func newSettingsFixture() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockSettingsRepository) {
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	settingsRepo := new(MockSettingsRepository)
	uow.SetRepositories(new(MockAccountRepository), new(MockTransactionRepository), settingsRepo, new(MockEventPublisher))
	factory.On("Create").Return(uow)
	return factory, uow, settingsRepo
}

func TestSettingsService_Load_SeedsDefaultsAndCaches(t *testing.T) {
	ctx := context.Background()
	factory, uow, settingsRepo := newSettingsFixture()
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	settingsRepo.On("SetIfAbsent", ctx, models.SettingsNamespaceEconomy, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	settingsRepo.On("GetAll", ctx, models.SettingsNamespaceEconomy).Return(map[string]string{
		models.SettingStartingBalance: "5000",
		models.SettingGambleWinChance: "0.25",
	}, nil)

	svc := NewSettingsService(factory)
	require.NoError(t, svc.Load(ctx))

	cfg := svc.Snapshot()
	assert.Equal(t, int64(5000), cfg.StartingBalance)
	assert.Equal(t, 0.25, cfg.GambleWinChance)
	// Keys absent from the database keep their defaults.
	assert.Equal(t, int64(100), cfg.DailyMin)

	settingsRepo.AssertNumberOfCalls(t, "SetIfAbsent", len(defaultSettingsMap()))
}

func TestSettingsService_SnapshotBeforeLoad(t *testing.T) {
	svc := NewSettingsService(new(MockUnitOfWorkFactory))

	assert.Equal(t, models.DefaultEconomySettings(), svc.Snapshot())
}

func TestSettingsService_Set_WritesThroughToCache(t *testing.T) {
	ctx := context.Background()
	factory, uow, settingsRepo := newSettingsFixture()
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	settingsRepo.On("Set", ctx, models.SettingsNamespaceEconomy, models.SettingDailyMax, "900").Return(nil)

	svc := NewSettingsService(factory)
	require.NoError(t, svc.Set(ctx, models.SettingDailyMax, "900"))

	assert.Equal(t, int64(900), svc.Snapshot().DailyMax)
	assert.Equal(t, "900", svc.All()[models.SettingDailyMax])
	settingsRepo.AssertExpectations(t)
}

func TestSettingsService_Set_RejectsInvalidValues(t *testing.T) {
	svc := NewSettingsService(new(MockUnitOfWorkFactory))
	ctx := context.Background()

	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "no_such_key", "1"},
		{"negative integer", models.SettingDailyMax, "-5"},
		{"non-numeric integer", models.SettingStartingBalance, "lots"},
		{"probability above one", models.SettingGambleWinChance, "1.5"},
		{"zero multiplier", models.SettingGambleMultiplier, "0"},
		{"empty currency symbol", models.SettingCurrencySymbol, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Set(ctx, tc.key, tc.value)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestSettingsService_Set_NotCachedOnCommitFailure(t *testing.T) {
	ctx := context.Background()
	factory, uow, settingsRepo := newSettingsFixture()
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit").Return(assert.AnError)
	uow.On("Rollback").Return(nil)
	settingsRepo.On("Set", ctx, models.SettingsNamespaceEconomy, models.SettingDailyMax, "900").Return(nil)

	svc := NewSettingsService(factory)
	err := svc.Set(ctx, models.SettingDailyMax, "900")

	assert.Error(t, err)
	assert.Equal(t, models.DefaultEconomySettings().DailyMax, svc.Snapshot().DailyMax)
}

func TestParseSettings_IgnoresUnparseableValues(t *testing.T) {
	cfg := parseSettings(map[string]string{
		models.SettingStartingBalance: "not a number",
		models.SettingRobSuccessRate:  "0.5",
	})

	assert.Equal(t, models.DefaultEconomySettings().StartingBalance, cfg.StartingBalance)
	assert.Equal(t, 0.5, cfg.RobSuccessRate)
}
