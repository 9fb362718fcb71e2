// Package config loads runtime configuration from the environment, with an
// optional config.env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	PostgresDSN string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	BotInternalToken string

	RateLimitMax    int
	RateLimitWindow time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	ReportingServiceURL string
	ChartTimeout        time.Duration

	PaymentWebBaseURL  string
	DummyPaymentAmount float64

	HeartbeatStaleAfter time.Duration
	OutboundRequeueAge  time.Duration
}

func Load() Config {
	return Config{
		Port:     envOr("PORT", "8080"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RedisHost:     envOr("REDIS_HOST", ""),
		RedisPort:     envOr("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		BotInternalToken: os.Getenv("BOT_INTERNAL_TOKEN"),

		RateLimitMax:    envInt("RATE_LIMIT_MAX", 30),
		RateLimitWindow: time.Duration(envInt("RATE_LIMIT_WINDOW_MS", 60000)) * time.Millisecond,

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-flash-latest"),
		GeminiTimeout: time.Duration(envInt("GEMINI_TIMEOUT_MS", 30000)) * time.Millisecond,

		ReportingServiceURL: envOr("REPORTING_SERVICE_URL", "http://localhost:4000"),
		ChartTimeout:        time.Duration(envInt("CHART_TIMEOUT_MS", 10000)) * time.Millisecond,

		PaymentWebBaseURL:  envOr("PAYMENT_WEB_BASE_URL", "http://localhost:3000"),
		DummyPaymentAmount: envFloat("DUMMY_PAYMENT_AMOUNT", 49000),

		HeartbeatStaleAfter: time.Duration(envInt("BOT_HEARTBEAT_STALE_SECONDS", 120)) * time.Second,
		OutboundRequeueAge:  time.Duration(envInt("OUTBOUND_REQUEUE_SECONDS", 300)) * time.Second,
	}
}

// RedisEnabled reports whether a Redis host is configured. Without one the
// rate limiter falls back to its in-memory counter store.
func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisHost) != ""
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
