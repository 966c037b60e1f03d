package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr    string
	DatabaseURL string
	DBMigrate   bool

	JWTSecret string
	JWTIssuer string

	// RabbitMQ (outbox target)
	RabbitURL      string
	RabbitExchange string

	// Redis; empty URL disables the details cache
	RedisURL        string
	CacheTTLDetails time.Duration

	// Rate limiting
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// StatsApp is the app name stamped on recorded hits.
	StatsApp string

	OutboxPollInterval time.Duration
	OutboxBatch        int
}

func (c *Config) IsDev() bool { return c.AppEnv == "dev" }

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "dev"),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMigrate:   getBool("DB_MIGRATE", false),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		RabbitURL:      getEnv("RABBIT_URL", ""),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "listing.events"),

		RedisURL:        getEnv("REDIS_URL", ""),
		CacheTTLDetails: getDuration("CACHE_TTL_DETAILS", 5*time.Minute),

		RLEnabled: getBool("RL_ENABLED", true),
		RLLimit:   getIntEnv("RL_IP_LIMIT", 100),
		RLWindow:  getDuration("RL_IP_WINDOW", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		HTTPReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second),
		HTTPIdleTimeout:  getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),

		StatsApp: getEnv("STATS_APP", "listing-service"),

		OutboxPollInterval: getDuration("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatch:        getIntEnv("OUTBOX_BATCH", 20),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	// outside dev the outbox must have somewhere to go
	if !cfg.IsDev() && cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing RABBIT_URL (required when APP_ENV != dev)")
	}
	if cfg.OutboxBatch <= 0 {
		return nil, fmt.Errorf("invalid OUTBOX_BATCH: must be > 0")
	}
	if cfg.RLEnabled && cfg.RLLimit <= 0 {
		return nil, fmt.Errorf("invalid RL_IP_LIMIT: must be > 0")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
