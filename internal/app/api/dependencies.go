package api

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordersredis "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/cache/redis"
	ordersmemory "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/memory"
	ordersrabbitmq "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/messaging/rabbitmq"
	ordersobs "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application"
	ordersports "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/platform/migrations"
	platformobservability "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/platform/observability"
	platformpostgres "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/platform/postgres"
	platformredis "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/platform/redis"
)

// ErrNonDurableStorage reports that orders are held in process memory, so the API and the
// Temporal worker would each see their own copy.
var ErrNonDurableStorage = errors.New("order storage is in-memory; durable decision workflows need postgres")

// OrderStack is the order service together with the infrastructure behind it.
type OrderStack struct {
	Service ordersports.Service
	// Durable is true when orders and idempotency keys live in shared storage
	// that another process can read.
	Durable  bool
	cleanups []func()
}

// Close releases infrastructure in reverse order of acquisition.
func (s *OrderStack) Close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
}

func (s *OrderStack) onClose(fn func()) {
	s.cleanups = append(s.cleanups, fn)
}

// BuildOrderStack wires storage, idempotency, event publishing and observability
// around the order service. Unreachable infrastructure falls back to in-memory or no-op adapters.
func BuildOrderStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) *OrderStack {
	logger := effectiveLogger(instruments)
	stack := &OrderStack{}

	db, cleanupDB := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger,
		platformpostgres.WithMaxOpenConns(cfg.PostgresMaxConns))
	stack.onClose(cleanupDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Warn("failed to migrate order schema, falling back to in-memory order storage", slog.String("error", err.Error()))
			db = nil
		}
	}

	stack.Durable = db != nil
	repo := buildRepository(db, logger)
	idempotency := buildIdempotencyStore(ctx, cfg, db, stack, logger)
	publisher := buildPublisher(cfg, stack, logger)

	core := ordersapp.NewService(
		repo,
		ordersapp.WithIdempotencyStore(idempotency),
		ordersapp.WithPublisher(publisher),
		ordersapp.WithDefaultCurrency(cfg.DefaultCurrency),
	)
	stack.Service = ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return stack
}

func buildRepository(db *gorm.DB, logger *slog.Logger) ordersports.Repository {
	if db == nil {
		return ordersmemory.NewRepository()
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db)
}

func buildIdempotencyStore(ctx context.Context, cfg Config, db *gorm.DB, stack *OrderStack, logger *slog.Logger) ordersports.IdempotencyStore {
	if cfg.RedisAddr != "" {
		client, err := platformredis.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err == nil {
			stack.onClose(func() { _ = client.Close() })
			logger.Info("idempotency keys stored in redis", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.IdempotencyTTL))
			return ordersredis.NewIdempotencyStore(client, cfg.IdempotencyTTL)
		}
		logger.Warn("failed to connect to redis, trying next idempotency backend", slog.String("error", err.Error()))
	}
	if db != nil {
		logger.Info("idempotency keys stored in postgres")
		return orderspostgres.NewIdempotencyStore(db)
	}
	logger.Warn("idempotency keys kept in memory")
	return ordersmemory.NewIdempotencyStore()
}

func buildPublisher(cfg Config, stack *OrderStack, logger *slog.Logger) ordersports.EventPublisher {
	if cfg.RabbitMQURL == "" {
		logger.Warn("RABBITMQ_URL not set, order status events will not be published")
		return ordersports.NoopPublisher{}
	}
	publisher, err := ordersrabbitmq.Dial(cfg.RabbitMQURL,
		ordersrabbitmq.WithExchange(cfg.EventsExchange),
		ordersrabbitmq.WithLogger(logger),
	)
	if err != nil {
		logger.Warn("failed to connect to rabbitmq, order status events will not be published", slog.String("error", err.Error()))
		return ordersports.NoopPublisher{}
	}
	stack.onClose(func() { _ = publisher.Close() })
	logger.Info("order status events published to rabbitmq", slog.String("exchange", cfg.EventsExchange))
	return publisher
}

// ConnectTemporal dials Temporal with tracing and structured logging configured.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
