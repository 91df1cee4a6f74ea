// Package worker runs the Temporal worker for admin order decisions.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	temporalworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/app/api"
	orderactivities "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/platform/observability"
)

const serviceName = "orders-worker"

// Run registers the decision workflow and activities and blocks until interrupted.
func Run(ctx context.Context) error {
	cfg, err := api.LoadConfig()
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

	stack := api.BuildOrderStack(ctx, cfg, instruments)
	defer stack.Close()
	if !stack.Durable {
		logger.Error("refusing to start worker without shared order storage", slog.String("error", api.ErrNonDurableStorage.Error()))
		return api.ErrNonDurableStorage
	}
	activities := orderactivities.NewActivities(stack.Service)

	temporalClient, err := api.ConnectTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		return err
	}
	defer temporalClient.Close()

	w := temporalworker.New(temporalClient, orderworkflows.OrderDecisionTaskQueue, temporalworker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderDecisionWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderDecisionWorkflowName})
	w.RegisterActivityWithOptions(activities.ApproveOrder, activity.RegisterOptions{Name: orderactivities.ApproveOrderActivityName})
	w.RegisterActivityWithOptions(activities.RejectOrder, activity.RegisterOptions{Name: orderactivities.RejectOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderDecisionTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(temporalworker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
