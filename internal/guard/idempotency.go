package guard

import (
	"context"
	"sync"
	"time"

	"github.com/smashpoint/league/internal/domain"
)

// IdempotencyGuard deduplicates requests by idempotency key and remembers the
// id of the record each completed key produced, so a retry can be answered with it.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen map[string]*idempotencyEntry
	ttl  time.Duration
	now  func() time.Time
}

type idempotencyEntry struct {
	result string
	done   bool
	at     time.Time
}

// NewIdempotencyGuard creates a new in-memory idempotency guard. Keys are forgotten after ttl.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		seen: make(map[string]*idempotencyEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Check reserves key. It is not allowed if the key is in flight or already completed.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) domain.GuardResult {
	if key == "" {
		return domain.GuardResult{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.now()
	if e, ok := ig.seen[key]; ok && now.Sub(e.at) < ig.ttl {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = &idempotencyEntry{at: now}
	return domain.GuardResult{Allowed: true}
}

// Complete records the result id for a reserved key.
func (ig *IdempotencyGuard) Complete(key, result string) {
	if key == "" {
		return
	}
	ig.mu.Lock()
	defer ig.mu.Unlock()
	if e, ok := ig.seen[key]; ok {
		e.result = result
		e.done = true
	}
}

// Result returns the result id of a completed key.
func (ig *IdempotencyGuard) Result(key string) (string, bool) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	e, ok := ig.seen[key]
	if !ok || !e.done || ig.now().Sub(e.at) >= ig.ttl {
		return "", false
	}
	return e.result, true
}

// Remove deletes a key from the seen set (for retry scenarios).
func (ig *IdempotencyGuard) Remove(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}
