package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a fixed-window limiter keyed by client identity. Counters
// are created lazily and never deleted; a counter resets only when its
// window elapses. Each counter carries its own lock so concurrent requests
// from distinct clients never contend beyond the map lookup.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*counter
	now     func() time.Time
}

type counter struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
}

// NewMemoryStore creates an in-process limiter using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an in-process limiter with an injected
// clock for deterministic tests.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*counter),
		now:     now,
	}
}

// Check implements Limiter. The context is unused; the store never blocks.
func (s *MemoryStore) Check(_ context.Context, key string, maxAttempts int, window time.Duration) (bool, error) {
	now := s.now()

	s.mu.RLock()
	c, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		// Re-check under the write lock: another request may have created it
		if c, ok = s.entries[key]; !ok {
			c = &counter{}
			s.entries[key] = c
		}
		s.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 || now.Sub(c.windowStart) >= window {
		c.count = 1
		c.windowStart = now
		return false, nil
	}

	// A limited attempt increments without resetting the window, so
	// retrying cannot shorten the wait.
	c.count++
	return c.count > maxAttempts, nil
}
