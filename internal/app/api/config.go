package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	ordersrabbitmq "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/messaging/rabbitmq"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port              string
	PostgresDSN       string
	PostgresMaxConns  int
	RedisAddr         string
	RedisDB           int
	RabbitMQURL       string
	EventsExchange    string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	IdempotencyTTL    time.Duration
	DefaultCurrency   string
	Environment       string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RabbitMQURL:       strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		EventsExchange:    envDefault("ORDER_EVENTS_EXCHANGE", ordersrabbitmq.DefaultExchange),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		IdempotencyTTL:    24 * time.Hour,
		DefaultCurrency:   strings.ToUpper(envDefault("DEFAULT_CURRENCY", "INR")),
		Environment:       envDefault("ENVIRONMENT", "local"),
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = db
	}
	if raw := strings.TrimSpace(os.Getenv("POSTGRES_MAX_OPEN_CONNS")); raw != "" {
		conns, err := strconv.Atoi(raw)
		if err != nil || conns <= 0 {
			return Config{}, fmt.Errorf("POSTGRES_MAX_OPEN_CONNS must be a positive integer")
		}
		cfg.PostgresMaxConns = conns
	}
	if raw := strings.TrimSpace(os.Getenv("IDEMPOTENCY_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("IDEMPOTENCY_TTL_HOURS must be a positive integer")
		}
		cfg.IdempotencyTTL = time.Duration(hours) * time.Hour
	}
	if len(cfg.DefaultCurrency) != 3 {
		return Config{}, fmt.Errorf("DEFAULT_CURRENCY must be a three-letter code")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
