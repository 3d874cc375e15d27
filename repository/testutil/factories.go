package testutil

import (
	"time"

	"whatsbot/models"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(userID string) *models.Account {
	now := time.Now()
	return &models.Account{
		UserID:    userID,
		Balance:   1000,
		FirstSeen: now,
		LastSeen:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAccountWithBalance creates a test account with a specific wallet balance
func CreateTestAccountWithBalance(userID string, balance int64) *models.Account {
	account := CreateTestAccount(userID)
	account.Balance = balance
	return account
}

// CreateTestTransaction creates a test ledger entry
func CreateTestTransaction(userID string, txType models.TransactionType, amount int64) *models.Transaction {
	return &models.Transaction{
		UserID: userID,
		Type:   txType,
		Amount: amount,
		Details: map[string]any{
			"test": true,
		},
	}
}
