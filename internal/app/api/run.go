package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"

	ordersserver "github.com/ahmad8929/bloom-tales-frontend-sub000/go"
	ordersworkflows "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/workflows"
	ordersports "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
	platformobservability "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/platform/observability"
)

const serviceName = "orders-api"

// Run boots the order HTTP API with observability, storage, messaging, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack := BuildOrderStack(ctx, cfg, instruments)
	defer stack.Close()

	decisions, closeDecisions := selectDecisionWorkflows(stack, func() (client.Client, error) {
		return ConnectTemporal(cfg, instruments, "temporal-client")
	}, logger)
	defer closeDecisions()

	handlers := ordersserver.ApiHandleFunctions{
		OrderAPI: ordersserver.NewOrderAPI(stack.Service),
		AdminAPI: ordersserver.NewAdminAPI(stack.Service, decisions),
	}
	engine := gin.New()
	engine.Use(otelgin.Middleware(serviceName))
	router := ordersserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", server.Addr), slog.String("environment", cfg.Environment))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("orders API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("orders API shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

// selectDecisionWorkflows runs admin decisions through Temporal only when the worker can see
// the same orders as this process. Otherwise decisions execute inline against the local service.
func selectDecisionWorkflows(stack *OrderStack, connect func() (client.Client, error), logger *slog.Logger) (ordersports.DecisionWorkflows, func()) {
	inline := ordersworkflows.NewInlineDecisionWorkflows(stack.Service)
	if !stack.Durable {
		logger.Warn("order storage is not durable, running admin decisions inline")
		return inline, func() {}
	}
	temporalClient, err := connect()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, running admin decisions inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled")
	return ordersworkflows.NewTemporalDecisionWorkflows(temporalClient), temporalClient.Close
}
