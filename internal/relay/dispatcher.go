package relay

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sender delivers one outbound text to a chat address.
type Sender interface {
	SendText(ctx context.Context, waNumber, text string) error
}

// Queue is the API surface the dispatcher needs: claim, acknowledge,
// heartbeat.
type Queue interface {
	Claim(ctx context.Context, limit int) ([]OutboundItem, error)
	Ack(ctx context.Context, id, status, errorMessage string) error
	Heartbeat(ctx context.Context, serviceName string) error
}

type DispatcherConfig struct {
	Workers           int
	PollInterval      time.Duration
	ClaimLimit        int
	HeartbeatInterval time.Duration
	ServiceName       string
}

// Dispatcher polls the outbound queue and fans deliveries out over a fixed
// worker pool. Every claimed message is acked exactly once, SENT or FAILED.
type Dispatcher struct {
	queue  Queue
	sender Sender
	cfg    DispatcherConfig

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	items   chan OutboundItem

	log zerolog.Logger
}

func NewDispatcher(queue Queue, sender Sender, cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.ClaimLimit < 1 || cfg.ClaimLimit > 20 {
		cfg.ClaimLimit = 5
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "bot"
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:  queue,
		sender: sender,
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		items:  make(chan OutboundItem, cfg.ClaimLimit*2),
		log:    log,
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.log.Info().Int("workers", d.cfg.Workers).Dur("poll", d.cfg.PollInterval).Msg("outbound dispatcher started")

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.wg.Add(2)
	go d.pollLoop()
	go d.heartbeatLoop()
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	d.log.Info().Msg("outbound dispatcher stopped")
}

func (d *Dispatcher) pollLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.poll()
		}
	}
}

func (d *Dispatcher) poll() {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.PollInterval)
	defer cancel()

	claimed, err := d.queue.Claim(ctx, d.cfg.ClaimLimit)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to claim outbound messages")
		return
	}
	for _, item := range claimed {
		select {
		case d.items <- item:
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) heartbeatLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(d.ctx, 10*time.Second)
			if err := d.queue.Heartbeat(ctx, d.cfg.ServiceName); err != nil {
				d.log.Warn().Err(err).Msg("heartbeat failed")
			}
			cancel()
		}
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case item := <-d.items:
			d.deliver(item, id)
		}
	}
}

func (d *Dispatcher) deliver(item OutboundItem, workerID int) {
	ctx, cancel := context.WithTimeout(d.ctx, 30*time.Second)
	defer cancel()

	sendErr := d.sender.SendText(ctx, item.WaNumber, item.MessageText)

	status := "SENT"
	errorMessage := ""
	if sendErr != nil {
		status = "FAILED"
		errorMessage = sendErr.Error()
		d.log.Error().Err(sendErr).Int("worker", workerID).Str("id", item.ID).Msg("outbound delivery failed")
	}

	// Ack uses a fresh context so shutdown does not strand a sent message in
	// PROCESSING.
	ackCtx, ackCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ackCancel()
	if err := d.queue.Ack(ackCtx, item.ID, status, errorMessage); err != nil {
		d.log.Error().Err(err).Str("id", item.ID).Str("status", status).Msg("failed to ack outbound message")
	}
}
