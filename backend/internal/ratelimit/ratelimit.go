package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a process-local fixed-window rate limiter. It is advisory
// abuse mitigation, not a correctness mechanism: windows reset on time
// only and state is not shared across processes or persisted.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// New creates a limiter allowing limit operations per key per window
func New(limit int, window time.Duration) *Limiter {
	return newWithClock(limit, window, time.Now)
}

func newWithClock(limit int, window time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     now,
	}
}

// Allow records one operation for the key and reports whether it is
// within the window's budget
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	if e.count >= l.limit {
		return false
	}
	e.count++
	return true
}

// Prune drops expired windows. Callers may run it periodically; Allow
// does not depend on it.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}
