package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"whatsbot/events"
	"whatsbot/models"
)

func newAccountFixture() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockEventPublisher) {
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	accountRepo := new(MockAccountRepository)
	bus := new(MockEventPublisher)
	uow.SetRepositories(accountRepo, new(MockTransactionRepository), new(MockSettingsRepository), bus)
	factory.On("Create").Return(uow)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)
	return factory, uow, accountRepo, bus
}

func TestAccountService_EnsureAccount_NewAccountEmitsEvent(t *testing.T) {
	ctx := context.Background()
	factory, _, accountRepo, bus := newAccountFixture()

	created := &models.Account{
		UserID:       "user@s.whatsapp.net",
		Balance:      1000,
		CommandsUsed: 1,
	}
	accountRepo.On("Ensure", ctx, "user@s.whatsapp.net", int64(1000)).Return(created, nil)
	bus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		created, ok := e.(events.AccountCreatedEvent)
		return ok && created.UserID == "user@s.whatsapp.net" && created.StartingBalance == 1000
	})).Return()

	svc := NewAccountService(factory, NewSettingsService(nil))
	account, err := svc.EnsureAccount(ctx, "user@s.whatsapp.net")

	require.NoError(t, err)
	assert.Equal(t, int64(1000), account.Balance)
	bus.AssertExpectations(t)
}

func TestAccountService_EnsureAccount_ExistingAccountNoEvent(t *testing.T) {
	ctx := context.Background()
	factory, _, accountRepo, bus := newAccountFixture()

	existing := &models.Account{
		UserID:       "user@s.whatsapp.net",
		Balance:      42,
		CommandsUsed: 17,
	}
	accountRepo.On("Ensure", ctx, "user@s.whatsapp.net", int64(1000)).Return(existing, nil)

	svc := NewAccountService(factory, NewSettingsService(nil))
	account, err := svc.EnsureAccount(ctx, "user@s.whatsapp.net")

	require.NoError(t, err)
	assert.Equal(t, int64(42), account.Balance)
	bus.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestAccountService_GetAccount_MissingReturnsNil(t *testing.T) {
	ctx := context.Background()
	factory, _, accountRepo, _ := newAccountFixture()
	accountRepo.On("GetByUserID", ctx, "ghost@s.whatsapp.net").Return(nil, nil)

	svc := NewAccountService(factory, NewSettingsService(nil))
	account, err := svc.GetAccount(ctx, "ghost@s.whatsapp.net")

	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestAccountService_Leaderboard_RanksByNetWorth(t *testing.T) {
	ctx := context.Background()
	factory, _, accountRepo, _ := newAccountFixture()

	accountRepo.On("Top", ctx, 3).Return([]*models.Account{
		{UserID: "rich@s.whatsapp.net", Balance: 9000, Bank: 1000},
		{UserID: "mid@s.whatsapp.net", Balance: 500, Bank: 4000},
		{UserID: "poor@s.whatsapp.net", Balance: 10, Bank: 0},
	}, nil)

	svc := NewAccountService(factory, NewSettingsService(nil))
	entries, err := svc.Leaderboard(ctx, 3)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "rich@s.whatsapp.net", entries[0].UserID)
	assert.Equal(t, int64(10000), entries[0].NetWorth)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestAccountService_Leaderboard_DefaultsLimit(t *testing.T) {
	ctx := context.Background()
	factory, _, accountRepo, _ := newAccountFixture()
	accountRepo.On("Top", ctx, 10).Return([]*models.Account{}, nil)

	svc := NewAccountService(factory, NewSettingsService(nil))
	entries, err := svc.Leaderboard(ctx, 0)

	require.NoError(t, err)
	assert.Empty(t, entries)
	accountRepo.AssertExpectations(t)
}
