package service

import (
	"time"
)

// CheckCooldown reports whether a rate-limited action may run again.
// last is the timestamp of the previous use (nil means never used).
// The caller stamps the new timestamp inside the same transaction that
// grants the reward; this function only reads.
func CheckCooldown(last *time.Time, cooldown time.Duration, now time.Time) (canUse bool, remaining time.Duration) {
	if last == nil {
		return true, 0
	}
	elapsed := now.Sub(*last)
	if elapsed >= cooldown {
		return true, 0
	}
	return false, cooldown - elapsed
}

// sameDate reports whether two times fall on the same UTC calendar date.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// isYesterday reports whether prev falls on the UTC calendar date
// immediately before now. Streaks are date-based, not 24h-window based.
func isYesterday(prev, now time.Time) bool {
	return sameDate(prev, now.UTC().AddDate(0, 0, -1))
}
