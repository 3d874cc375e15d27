package models

// WorkResult describes a completed work shift.
type WorkResult struct {
	JobName    string
	Earnings   int64
	NewBalance int64
	WorkCount  int64
}

// DailyResult describes a claimed daily reward.
type DailyResult struct {
	Amount        int64
	NewBalance    int64
	Streak        int64
	LongestStreak int64
}

// TransferResult describes a completed wallet-to-wallet transfer.
type TransferResult struct {
	Amount           int64
	RecipientID      string
	NewBalance       int64
	RecipientBalance int64
}

// BankResult describes a completed deposit or withdrawal.
type BankResult struct {
	Amount     int64
	NewBalance int64
	NewBank    int64
}

// GambleResult describes a resolved bet.
type GambleResult struct {
	Won        bool
	BetAmount  int64
	Profit     int64
	NewBalance int64
}

// RobResult describes a resolved robbery attempt.
type RobResult struct {
	Success       bool
	TargetID      string
	Amount        int64
	Penalty       int64
	NewBalance    int64
	TargetBalance int64
}

// AdminAdjustResult describes an admin balance mutation.
type AdminAdjustResult struct {
	TargetID   string
	Amount     int64
	NewBalance int64
}

// LeaderboardEntry is one row of the net-worth leaderboard.
type LeaderboardEntry struct {
	Rank     int
	UserID   string
	Balance  int64
	Bank     int64
	NetWorth int64
}
