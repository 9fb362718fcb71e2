package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *MemoryStore) {
	store := NewMemoryStore()
	return NewLimiter(store, max, window, zerolog.Nop()), store
}

func TestAdmitWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		allowed, _ := l.Admit(ctx, "628111")
		if !allowed {
			t.Fatalf("admission %d should be allowed", i)
		}
	}

	allowed, retryAfter := l.Admit(ctx, "628111")
	if allowed {
		t.Fatal("admission above max should be denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("retryAfter = %v, want within (0, window]", retryAfter)
	}
}

func TestAdmitIndependentKeys(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	if ok, _ := l.Admit(ctx, "a"); !ok {
		t.Fatal("first key should be allowed")
	}
	if ok, _ := l.Admit(ctx, "b"); !ok {
		t.Fatal("second key should not share the first key's window")
	}
	if ok, _ := l.Admit(ctx, "a"); ok {
		t.Fatal("first key should now be over its limit")
	}
}

func TestWindowReset(t *testing.T) {
	l, store := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	base := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	if ok, _ := l.Admit(ctx, "k"); !ok {
		t.Fatal("first admission should pass")
	}
	if ok, _ := l.Admit(ctx, "k"); ok {
		t.Fatal("second admission inside the window should be denied")
	}

	store.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if ok, _ := l.Admit(ctx, "k"); !ok {
		t.Fatal("admission after the window elapsed should reset the counter")
	}
}

func TestConcurrentSameKey(t *testing.T) {
	const max = 50
	l, _ := newTestLimiter(max, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Admit(ctx, "shared")
			if ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != max {
		t.Fatalf("allowed %d admissions, want exactly %d", allowedCount, max)
	}
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("counter store down")
}

func TestFailsOpenOnStoreError(t *testing.T) {
	l := NewLimiter(failingStore{}, 1, time.Minute, zerolog.Nop())
	if ok, _ := l.Admit(context.Background(), "k"); !ok {
		t.Fatal("a broken counter store must not block users")
	}
}
