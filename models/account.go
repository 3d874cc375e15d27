package models

import (
	"time"
)

// Account represents a chat user's economy account. One row per WhatsApp
// JID, created lazily on first command and never deleted.
type Account struct {
	UserID           string     `db:"user_id"`
	Balance          int64      `db:"balance"`
	Bank             int64      `db:"bank"`
	TotalEarned      int64      `db:"total_earned"`
	TotalSpent       int64      `db:"total_spent"`
	WorkCount        int64      `db:"work_count"`
	RobCount         int64      `db:"rob_count"`
	Streak           int64      `db:"streak"`
	LongestStreak    int64      `db:"longest_streak"`
	TotalAttendances int64      `db:"total_attendances"`
	CommandsUsed     int64      `db:"commands_used"`
	LastDaily        *time.Time `db:"last_daily"`
	LastWorkAt       *time.Time `db:"last_work_at"`
	LastRobAt        *time.Time `db:"last_rob_at"`
	LastGambleAt     *time.Time `db:"last_gamble_at"`
	FirstSeen        time.Time  `db:"first_seen"`
	LastSeen         time.Time  `db:"last_seen"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// NetWorth returns wallet plus bank.
func (a *Account) NetWorth() int64 {
	return a.Balance + a.Bank
}
