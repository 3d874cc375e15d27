package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsbot/repository/testutil"
)

func TestAccountRepository_Ensure(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account, err := repo.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), account.Balance)
	assert.Equal(t, int64(0), account.Bank)
	assert.Equal(t, int64(1), account.CommandsUsed)

	// A second touch keeps the balance and bumps the counter.
	account, err = repo.Ensure(ctx, "111@s.whatsapp.net", 9999)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), account.Balance, "existing balance must not be overwritten")
	assert.Equal(t, int64(2), account.CommandsUsed)
}

func TestAccountRepository_Ensure_ConcurrentFirstTouch(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Ensure(ctx, "race@s.whatsapp.net", 1000)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	account, err := repo.GetByUserID(ctx, "race@s.whatsapp.net")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), account.Balance, "exactly one insert must win")
	assert.Equal(t, int64(workers), account.CommandsUsed)
}

func TestAccountRepository_GetByUserID_Missing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)

	account, err := repo.GetByUserID(context.Background(), "ghost@s.whatsapp.net")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestAccountRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account, err := repo.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	account.Balance = 4200
	account.Bank = 100
	account.TotalEarned = 3200
	account.WorkCount = 3
	account.Streak = 2
	account.LongestStreak = 5
	account.LastDaily = &now
	account.LastWorkAt = &now
	require.NoError(t, repo.Update(ctx, account))

	got, err := repo.GetByUserID(ctx, "111@s.whatsapp.net")
	require.NoError(t, err)
	assert.Equal(t, int64(4200), got.Balance)
	assert.Equal(t, int64(100), got.Bank)
	assert.Equal(t, int64(3200), got.TotalEarned)
	assert.Equal(t, int64(3), got.WorkCount)
	assert.Equal(t, int64(5), got.LongestStreak)
	require.NotNil(t, got.LastDaily)
	assert.WithinDuration(t, now, *got.LastDaily, time.Second)
}

func TestAccountRepository_Update_MissingAccount(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)

	err := repo.Update(context.Background(), testutil.CreateTestAccount("ghost@s.whatsapp.net"))
	assert.Error(t, err)
}

// TestAccountRepository_ForUpdate_SerializesConcurrentIncrements drives two
// transactions through the read-modify-write cycle at once. Without the
// row lock one increment would be lost.
func TestAccountRepository_ForUpdate_SerializesConcurrentIncrements(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
				txRepo := newAccountRepositoryWithTx(tx)
				account, err := txRepo.GetByUserIDForUpdate(ctx, "111@s.whatsapp.net")
				if err != nil {
					return err
				}
				account.Balance += 100
				return txRepo.Update(ctx, account)
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	account, err := repo.GetByUserID(ctx, "111@s.whatsapp.net")
	require.NoError(t, err)
	assert.Equal(t, int64(1000+workers*100), account.Balance)
}

// TestAccountRepository_OrderedLocking_NoDeadlock runs opposite-direction
// two-row updates concurrently. Because both sides lock in ascending
// user-id order the transactions queue instead of deadlocking.
func TestAccountRepository_OrderedLocking_NoDeadlock(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Ensure(ctx, "111@s.whatsapp.net", 10000)
	require.NoError(t, err)
	_, err = repo.Ensure(ctx, "222@s.whatsapp.net", 10000)
	require.NoError(t, err)

	move := func(from, to string, amount int64) error {
		return testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			txRepo := newAccountRepositoryWithTx(tx)
			ids := []string{from, to}
			if ids[0] > ids[1] {
				ids[0], ids[1] = ids[1], ids[0]
			}
			accounts := make(map[string]int64, 2)
			for _, id := range ids {
				account, err := txRepo.GetByUserIDForUpdate(ctx, id)
				if err != nil {
					return err
				}
				accounts[id] = account.Balance
			}
			for id, balance := range accounts {
				account, err := txRepo.GetByUserID(ctx, id)
				if err != nil {
					return err
				}
				account.Balance = balance
				if id == from {
					account.Balance -= amount
				} else {
					account.Balance += amount
				}
				if err := txRepo.Update(ctx, account); err != nil {
					return err
				}
			}
			return nil
		})
	}

	const rounds = 20
	var wg sync.WaitGroup
	errsAB := make([]error, rounds)
	errsBA := make([]error, rounds)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			errsAB[i] = move("111@s.whatsapp.net", "222@s.whatsapp.net", 10)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			errsBA[i] = move("222@s.whatsapp.net", "111@s.whatsapp.net", 10)
		}
	}()
	wg.Wait()

	for i := 0; i < rounds; i++ {
		require.NoError(t, errsAB[i])
		require.NoError(t, errsBA[i])
	}

	a, err := repo.GetByUserID(ctx, "111@s.whatsapp.net")
	require.NoError(t, err)
	b, err := repo.GetByUserID(ctx, "222@s.whatsapp.net")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), a.Balance+b.Balance, "total funds are conserved")
}

func TestAccountRepository_NegativeBalanceRejected(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account, err := repo.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)

	// The schema CHECK constraint is the last line of defense.
	account.Balance = -1
	assert.Error(t, repo.Update(ctx, account))

	account.Balance = 0
	account.Bank = -1
	assert.Error(t, repo.Update(ctx, account))
}

func TestAccountRepository_Top(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	for _, seed := range []struct {
		id      string
		balance int64
		bank    int64
	}{
		{"poor@s.whatsapp.net", 10, 0},
		{"rich@s.whatsapp.net", 500, 9500},
		{"mid@s.whatsapp.net", 3000, 0},
	} {
		account, err := repo.Ensure(ctx, seed.id, seed.balance)
		require.NoError(t, err)
		account.Bank = seed.bank
		require.NoError(t, repo.Update(ctx, account))
	}

	top, err := repo.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "rich@s.whatsapp.net", top[0].UserID)
	assert.Equal(t, "mid@s.whatsapp.net", top[1].UserID)
}

func TestAccountRepository_ResetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	now := time.Now()
	for _, id := range []string{"a@s.whatsapp.net", "b@s.whatsapp.net"} {
		account, err := repo.Ensure(ctx, id, 1000)
		require.NoError(t, err)
		account.Balance = 5555
		account.Bank = 777
		account.Streak = 3
		account.LastDaily = &now
		require.NoError(t, repo.Update(ctx, account))
	}

	affected, err := repo.ResetAll(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	account, err := repo.GetByUserID(ctx, "a@s.whatsapp.net")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), account.Balance)
	assert.Equal(t, int64(0), account.Bank)
	assert.Equal(t, int64(0), account.Streak)
	assert.Nil(t, account.LastDaily)
}
