package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dimasprakoso/catatduit/internal/config"
	"github.com/dimasprakoso/catatduit/internal/logger"
	"github.com/dimasprakoso/catatduit/internal/relay"
)

func main() {
	_ = config.LoadEnvFile("config.env")
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN is required")
	}
	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:" + cfg.Port
	}

	api := relay.NewAPIClient(apiBaseURL, cfg.BotInternalToken, 30*time.Second)
	bridge := relay.NewBridge(api, log)

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		botToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram bot")
	}

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, bridge.HandleUpdate)

	dispatcher := relay.NewDispatcher(api, relay.NewTelegramSender(b), relay.DispatcherConfig{
		Workers:           3,
		PollInterval:      3 * time.Second,
		ClaimLimit:        5,
		HeartbeatInterval: 30 * time.Second,
		ServiceName:       "bot",
	}, log)
	dispatcher.Start()
	defer dispatcher.Stop()

	log.Info().Str("api", apiBaseURL).Msg("relay started")
	b.Start(ctx)
}
