package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeQueue struct {
	mu      sync.Mutex
	pending []OutboundItem
	acks    map[string]string
}

func newFakeQueue(items ...OutboundItem) *fakeQueue {
	return &fakeQueue{pending: items, acks: make(map[string]string)}
}

func (q *fakeQueue) Claim(_ context.Context, limit int) ([]OutboundItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit > len(q.pending) {
		limit = len(q.pending)
	}
	claimed := q.pending[:limit]
	q.pending = q.pending[limit:]
	return claimed, nil
}

func (q *fakeQueue) Ack(_ context.Context, id, status, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acks[id] = status
	return nil
}

func (q *fakeQueue) Heartbeat(context.Context, string) error { return nil }

func (q *fakeQueue) ackCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acks)
}

func (q *fakeQueue) ackStatus(id string) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.acks[id]
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []string
	failFn func(waNumber string) error
}

func (s *fakeSender) SendText(_ context.Context, waNumber, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFn != nil {
		if err := s.failFn(waNumber); err != nil {
			return err
		}
	}
	s.sent = append(s.sent, waNumber)
	return nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatcherDeliversAndAcks(t *testing.T) {
	queue := newFakeQueue(
		OutboundItem{ID: "m1", WaNumber: "100", MessageText: "a"},
		OutboundItem{ID: "m2", WaNumber: "200", MessageText: "b"},
	)
	sender := &fakeSender{}

	d := NewDispatcher(queue, sender, DispatcherConfig{
		Workers:      2,
		PollInterval: 20 * time.Millisecond,
	}, zerolog.Nop())
	d.Start()
	defer d.Stop()

	waitFor(t, 2*time.Second, func() bool { return queue.ackCount() == 2 })

	if queue.ackStatus("m1") != "SENT" || queue.ackStatus("m2") != "SENT" {
		t.Fatalf("acks = %v", queue.acks)
	}
}

func TestDispatcherAcksFailures(t *testing.T) {
	queue := newFakeQueue(OutboundItem{ID: "m1", WaNumber: "bad", MessageText: "a"})
	sender := &fakeSender{failFn: func(waNumber string) error {
		if waNumber == "bad" {
			return errors.New("no such chat")
		}
		return nil
	}}

	d := NewDispatcher(queue, sender, DispatcherConfig{
		Workers:      1,
		PollInterval: 20 * time.Millisecond,
	}, zerolog.Nop())
	d.Start()
	defer d.Stop()

	waitFor(t, 2*time.Second, func() bool { return queue.ackCount() == 1 })

	if queue.ackStatus("m1") != "FAILED" {
		t.Fatalf("ack = %q, want FAILED", queue.ackStatus("m1"))
	}
}
