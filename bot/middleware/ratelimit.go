package middleware

import (
	"sync"
	"time"
)

// RateLimiter is a per-key sliding-window limiter used to cap how many
// commands a single user can issue. It is process-local, like the
// command locks.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time

	// now is swappable for tests
	now func() time.Time
}

// NewRateLimiter allows limit hits per key within window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.hits[key][:0]
	for _, hit := range l.hits[key] {
		if hit.After(cutoff) {
			recent = append(recent, hit)
		}
	}

	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false
	}

	l.hits[key] = append(recent, now)
	return true
}

// Prune drops keys with no recent hits so the map does not grow with
// every user ever seen. Called from the maintenance scheduler.
func (l *RateLimiter) Prune() int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := 0
	for key, hits := range l.hits {
		stale := true
		for _, hit := range hits {
			if hit.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.hits, key)
			pruned++
		}
	}
	return pruned
}
