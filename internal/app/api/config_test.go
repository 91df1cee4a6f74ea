package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_DB", "RABBITMQ_URL", "ORDER_EVENTS_EXCHANGE", "TEMPORAL_DISABLED", "IDEMPOTENCY_TTL_HOURS", "DEFAULT_CURRENCY", "POSTGRES_MAX_OPEN_CONNS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, "orders.events", cfg.EventsExchange)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, "INR", cfg.DefaultCurrency)
	require.False(t, cfg.TemporalDisabled)
	require.Empty(t, cfg.PostgresDSN)
	require.Zero(t, cfg.PostgresMaxConns)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TEMPORAL_DISABLED", "Yes")
	t.Setenv("IDEMPOTENCY_TTL_HOURS", "6")
	t.Setenv("DEFAULT_CURRENCY", "usd")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, 2, cfg.RedisDB)
	require.True(t, cfg.TemporalDisabled)
	require.Equal(t, 6*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, "USD", cfg.DefaultCurrency)
	require.Equal(t, 8, cfg.PostgresMaxConns)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"REDIS_DB":                "-1",
		"IDEMPOTENCY_TTL_HOURS":   "zero",
		"DEFAULT_CURRENCY":        "RUPEE",
		"POSTGRES_MAX_OPEN_CONNS": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
