// Package scheduler runs the background janitor that returns outbound
// messages stuck in PROCESSING back to PENDING, so a crashed bridge never
// strands a claimed message.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/types"
)

type Scheduler struct {
	outbound  types.OutboundStore
	interval  time.Duration
	olderThan time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	log zerolog.Logger
}

func NewScheduler(outbound types.OutboundStore, interval, olderThan time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if olderThan <= 0 {
		olderThan = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		outbound:  outbound,
		interval:  interval,
		olderThan: olderThan,
		ctx:       ctx,
		cancel:    cancel,
		log:       log,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval).Dur("older_than", s.olderThan).Msg("outbound janitor started")

	s.wg.Add(1)
	go s.loop()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.log.Info().Msg("outbound janitor stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	n, err := s.outbound.RequeueStaleProcessing(ctx, s.olderThan)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to requeue stale outbound messages")
		return
	}
	if n > 0 {
		s.log.Warn().Int("count", n).Msg("requeued stale outbound messages")
	}
}
