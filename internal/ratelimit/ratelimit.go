// Package ratelimit provides fixed-window admission control keyed by sender
// address. Window state lives behind CounterStore so a single instance can run
// on the in-memory store while multi-instance deployments plug in Redis.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type CounterStore interface {
	// Incr increments the counter for key within the current fixed window,
	// starting a fresh window when none is active. It returns the count after
	// the increment and the time remaining until the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

type Limiter struct {
	store  CounterStore
	max    int64
	window time.Duration
	log    zerolog.Logger
}

func NewLimiter(store CounterStore, max int, window time.Duration, log zerolog.Logger) *Limiter {
	if max < 1 {
		max = 1
	}
	return &Limiter{store: store, max: int64(max), window: window, log: log}
}

// Admit reports whether one more message from key fits in the current window.
// A counter-store failure fails open: admission control is protection, not a
// correctness requirement, and dropping user messages over a Redis hiccup is
// the worse trade.
func (l *Limiter) Admit(ctx context.Context, key string) (allowed bool, retryAfter time.Duration) {
	count, remaining, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable, admitting")
		return true, 0
	}
	if count > l.max {
		return false, remaining
	}
	return true, 0
}

type bucket struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is the process-local CounterStore. Counters are lost on restart,
// which under-enforces briefly and is acceptable for admission control.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (m *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{count: 1, resetAt: now.Add(window)}
		m.buckets[key] = b
		return 1, window, nil
	}
	b.count++
	return b.count, b.resetAt.Sub(now), nil
}
