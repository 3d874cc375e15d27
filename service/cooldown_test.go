package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckCooldown(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	hour := time.Hour

	t.Run("never used", func(t *testing.T) {
		ok, remaining := CheckCooldown(nil, hour, now)
		assert.True(t, ok)
		assert.Zero(t, remaining)
	})

	t.Run("still cooling down", func(t *testing.T) {
		last := now.Add(-20 * time.Minute)
		ok, remaining := CheckCooldown(&last, hour, now)
		assert.False(t, ok)
		assert.Equal(t, 40*time.Minute, remaining)
	})

	t.Run("exactly elapsed", func(t *testing.T) {
		last := now.Add(-hour)
		ok, remaining := CheckCooldown(&last, hour, now)
		assert.True(t, ok)
		assert.Zero(t, remaining)
	})

	t.Run("long elapsed", func(t *testing.T) {
		last := now.Add(-48 * time.Hour)
		ok, _ := CheckCooldown(&last, hour, now)
		assert.True(t, ok)
	})
}

func TestSameDate(t *testing.T) {
	a := time.Date(2025, 6, 15, 0, 1, 0, 0, time.UTC)
	b := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, sameDate(a, b))
	assert.False(t, sameDate(b, c))

	// Comparison is in UTC regardless of the time's location.
	loc := time.FixedZone("UTC+5", 5*3600)
	d := time.Date(2025, 6, 16, 2, 0, 0, 0, loc) // 2025-06-15 21:00 UTC
	assert.True(t, sameDate(d, b))
}

func TestIsYesterday(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 5, 0, 0, time.UTC)

	late := time.Date(2025, 6, 14, 23, 55, 0, 0, time.UTC)
	assert.True(t, isYesterday(late, now), "ten minutes apart across midnight is still yesterday")

	sameDay := time.Date(2025, 6, 15, 0, 1, 0, 0, time.UTC)
	assert.False(t, isYesterday(sameDay, now))

	twoDays := time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC)
	assert.False(t, isYesterday(twoDays, now))
}

func TestCooldownActiveError_RemainingMinutes(t *testing.T) {
	err := &CooldownActiveError{Action: "work", Remaining: 61 * time.Second}
	assert.Equal(t, int64(2), err.RemainingMinutes(), "partial minutes round up")

	err = &CooldownActiveError{Action: "work", Remaining: 10 * time.Minute}
	assert.Equal(t, int64(10), err.RemainingMinutes())
}
