package service

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// lockKey identifies one in-flight operation per user.
type lockKey struct {
	UserID    string
	Operation string
}

// LockManager is a reject-on-contention guard against duplicate command
// submissions. It is process-local: across multiple processes only the
// database row locks are the correctness boundary.
type LockManager struct {
	mu   sync.Mutex
	held map[lockKey]time.Time

	// now is swappable for tests
	now func() time.Time
}

// NewLockManager creates a new lock manager
func NewLockManager() *LockManager {
	return &LockManager{
		held: make(map[lockKey]time.Time),
		now:  time.Now,
	}
}

// WithLock runs fn while holding the (userID, operation) lock. If the key
// is already held it fails immediately with ErrOperationInProgress; it
// never queues. The lock is released on every exit path, including panics.
func (m *LockManager) WithLock(userID, operation string, fn func() error) error {
	key := lockKey{UserID: userID, Operation: operation}

	m.mu.Lock()
	if _, taken := m.held[key]; taken {
		m.mu.Unlock()
		return ErrOperationInProgress
	}
	m.held[key] = m.now()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.held, key)
		m.mu.Unlock()
	}()

	return fn()
}

// Sweep force-releases entries older than staleAfter, recovering from
// handlers that crashed or hung while holding a lock. Returns the number
// of entries released.
func (m *LockManager) Sweep(staleAfter time.Duration) int {
	cutoff := m.now().Add(-staleAfter)

	m.mu.Lock()
	defer m.mu.Unlock()

	released := 0
	for key, acquired := range m.held {
		if acquired.Before(cutoff) {
			delete(m.held, key)
			released++
			log.WithFields(log.Fields{
				"userId":    key.UserID,
				"operation": key.Operation,
				"heldFor":   m.now().Sub(acquired),
			}).Warn("Force-released stale command lock")
		}
	}
	return released
}

// Held returns the number of currently held locks
func (m *LockManager) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}
