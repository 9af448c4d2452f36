package guard

import (
	"sync"
	"time"

	"github.com/smashpoint/league/internal/domain"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// Lockout blocks a key after too many failed attempts inside the window.
// It guards TAC verification against code guessing.
type Lockout struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewLockout creates a lockout with the given threshold.
func NewLockout(maxAttempts int, window time.Duration) *Lockout {
	return &Lockout{
		failures: make(map[string][]time.Time),
		max:      maxAttempts,
		window:   window,
		now:      time.Now,
	}
}

// RecordFailure notes one failed attempt for key.
func (l *Lockout) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[key] = append(l.recent(key), l.now())
}

// Reset clears the failure history after a successful attempt.
func (l *Lockout) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
}

// CheckLocked returns a too-many-requests error if key has reached the failure threshold.
func (l *Lockout) CheckLocked(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	recent := l.recent(key)
	l.failures[key] = recent
	if len(recent) >= l.max {
		return domain.ErrTooManyRequests("too many failed attempts, try again later")
	}
	return nil
}

// recent must be called with mu held.
func (l *Lockout) recent(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	entries := l.failures[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}
