package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimasprakoso/catatduit/internal/advice"
	"github.com/dimasprakoso/catatduit/internal/ai"
	"github.com/dimasprakoso/catatduit/internal/budget"
	"github.com/dimasprakoso/catatduit/internal/chart"
	"github.com/dimasprakoso/catatduit/internal/config"
	"github.com/dimasprakoso/catatduit/internal/goal"
	"github.com/dimasprakoso/catatduit/internal/inbound"
	"github.com/dimasprakoso/catatduit/internal/insight"
	"github.com/dimasprakoso/catatduit/internal/logger"
	"github.com/dimasprakoso/catatduit/internal/onboarding"
	"github.com/dimasprakoso/catatduit/internal/payment"
	"github.com/dimasprakoso/catatduit/internal/ratelimit"
	"github.com/dimasprakoso/catatduit/internal/report"
	"github.com/dimasprakoso/catatduit/internal/scheduler"
	"github.com/dimasprakoso/catatduit/internal/server"
	"github.com/dimasprakoso/catatduit/store"
)

func main() {
	_ = config.LoadEnvFile("config.env")
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Postgres")
	}
	defer pgStore.Close()

	// Redis backs the rate limiter across instances; without it the limiter
	// runs on the in-memory store.
	var counters ratelimit.CounterStore = ratelimit.NewMemoryStore()
	if cfg.RedisEnabled() {
		rdb, err := store.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB, "catatduit")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		counters = rdb
	} else {
		log.Warn().Msg("REDIS_HOST not set, rate limiting is per-instance only")
	}
	limiter := ratelimit.NewLimiter(counters, cfg.RateLimitMax, cfg.RateLimitWindow, log)

	aiClient, err := ai.NewClient(ctx, ai.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gemini client")
	}

	charts := chart.NewClient(cfg.ReportingServiceURL, cfg.ChartTimeout)
	payments := payment.NewService(pgStore, cfg.PaymentWebBaseURL, cfg.DummyPaymentAmount)
	goals := goal.NewService(pgStore, pgStore)

	processor := inbound.NewProcessor(inbound.ProcessorDeps{
		Limiter:       limiter,
		Users:         pgStore,
		MessageLogs:   pgStore,
		Transactions:  pgStore,
		Subscriptions: pgStore,
		AILogs:        pgStore,
		Extractor:     aiClient,
		OCR:           aiClient,
		Reports:       report.NewBuilder(pgStore, charts, log),
		Onboarding:    onboarding.NewService(pgStore, payments, log),
		Payments:      payments,
		Budgets:       budget.NewService(pgStore, pgStore),
		Goals:         goals,
		Insights:      insight.NewService(pgStore, aiClient, log),
		Advisor:       advice.NewService(pgStore, pgStore, goals, aiClient, log),
		Log:           log,
	})

	janitor := scheduler.NewScheduler(pgStore, time.Minute, cfg.OutboundRequeueAge, log)
	janitor.Start()
	defer janitor.Stop()

	srv := server.New(server.Deps{
		Processor:  processor,
		Outbound:   pgStore,
		Heartbeats: pgStore,
		Payments:   payments,
		BotToken:   cfg.BotInternalToken,
		StaleAfter: cfg.HeartbeatStaleAfter,
		Log:        log,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
