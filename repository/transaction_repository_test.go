package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsbot/models"
	"whatsbot/repository/testutil"
)

func TestTransactionRepository_RecordAndGetByUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	accounts := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := accounts.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)

	txn := &models.Transaction{
		UserID: "111@s.whatsapp.net",
		Type:   models.TransactionTypeWork,
		Amount: 150,
		Details: map[string]any{
			"job": "barista",
		},
	}
	require.NoError(t, repo.Record(ctx, txn))
	assert.NotZero(t, txn.ID)
	assert.False(t, txn.CreatedAt.IsZero())

	require.NoError(t, repo.Record(ctx, testutil.CreateTestTransaction("111@s.whatsapp.net", models.TransactionTypeGambleLoss, -500)))

	entries, err := repo.GetByUser(ctx, "111@s.whatsapp.net", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Most recent first.
	assert.Equal(t, models.TransactionTypeGambleLoss, entries[0].Type)
	assert.Equal(t, models.TransactionTypeWork, entries[1].Type)
	assert.Equal(t, "barista", entries[1].Details["job"])
}

func TestTransactionRepository_GetByUser_RespectsLimit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	accounts := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := accounts.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, testutil.CreateTestTransaction("111@s.whatsapp.net", models.TransactionTypeDaily, 100)))
	}

	entries, err := repo.GetByUser(ctx, "111@s.whatsapp.net", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestTransactionRepository_PurgeAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	accounts := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := accounts.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Record(ctx, testutil.CreateTestTransaction("111@s.whatsapp.net", models.TransactionTypeWork, 100)))
	}

	purged, err := repo.PurgeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), purged)

	entries, err := repo.GetByUser(ctx, "111@s.whatsapp.net", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransactionRepository_DeleteOlderThan(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	accounts := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	_, err := accounts.Ensure(ctx, "111@s.whatsapp.net", 1000)
	require.NoError(t, err)

	old := testutil.CreateTestTransaction("111@s.whatsapp.net", models.TransactionTypeWork, 100)
	require.NoError(t, repo.Record(ctx, old))
	recent := testutil.CreateTestTransaction("111@s.whatsapp.net", models.TransactionTypeDaily, 200)
	require.NoError(t, repo.Record(ctx, recent))

	// Backdate the first entry past the retention window.
	_, err = testDB.DB.Exec(ctx,
		`UPDATE transactions SET created_at = NOW() - INTERVAL '40 days' WHERE id = $1`, old.ID)
	require.NoError(t, err)

	pruned, err := repo.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	entries, err := repo.GetByUser(ctx, "111@s.whatsapp.net", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, recent.ID, entries[0].ID)
}
