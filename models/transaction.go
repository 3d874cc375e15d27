package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeWork            TransactionType = "work"
	TransactionTypeDaily           TransactionType = "daily"
	TransactionTypeTransferOut     TransactionType = "transfer_out"
	TransactionTypeTransferIn      TransactionType = "transfer_in"
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypeGambleWin       TransactionType = "gamble_win"
	TransactionTypeGambleLoss      TransactionType = "gamble_loss"
	TransactionTypeRobSuccess      TransactionType = "rob_success"
	TransactionTypeRobFail         TransactionType = "rob_fail"
	TransactionTypeRobbed          TransactionType = "robbed"
	TransactionTypeAdminAdd        TransactionType = "admin_add"
	TransactionTypeAdminRemove     TransactionType = "admin_remove"
	TransactionTypeAdminSetBalance TransactionType = "admin_setbalance"
)

// Transaction is an append-only ledger entry. Amount is the signed delta
// applied to the subject's wallet; deposits and withdrawals record the
// wallet side of the move. Rows are never mutated after creation.
type Transaction struct {
	ID        int64           `db:"id"`
	UserID    string          `db:"user_id"`
	Type      TransactionType `db:"type"`
	Amount    int64           `db:"amount"`
	Details   map[string]any  `db:"details"`
	CreatedAt time.Time       `db:"created_at"`
}
