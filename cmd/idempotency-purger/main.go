package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/app/api"
	orderspostgres "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/persistence/postgres"
	platformpostgres "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/platform/postgres"
)

// Removes postgres idempotency keys older than IDEMPOTENCY_TTL_HOURS. Run from cron.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	db, cleanup := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger,
		platformpostgres.WithMaxOpenConns(2), platformpostgres.WithPingTimeout(10*time.Second))
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge idempotency keys")
	}

	store := orderspostgres.NewIdempotencyStore(db)
	removed, err := store.PurgeRecordedBefore(ctx, time.Now().Add(-cfg.IdempotencyTTL))
	if err != nil {
		log.Fatalf("failed to purge idempotency keys: %v", err)
	}
	logger.Info("idempotency purge completed", slog.Int64("removed", removed), slog.Duration("ttl", cfg.IdempotencyTTL))
}
