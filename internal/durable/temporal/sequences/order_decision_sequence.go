package sequences

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	orderactivities "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/durable/temporal/activities/orders"
)

// Decision kinds understood by RunOrderDecisionSequence.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// OrderDecision is the command a decision sequence applies.
type OrderDecision struct {
	Kind           string
	Actor          domain.Actor
	OrderID        string
	Remarks        string
	IdempotencyKey string
}

// RunOrderDecisionSequence executes the decision activity exactly once.
// A decision is a conditional write, so a retry after an ambiguous failure would report NotPending
// instead of the original outcome.
func RunOrderDecisionSequence(ctx workflow.Context, decision OrderDecision) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order decision sequence started", "orderId", decision.OrderID, "kind", decision.Kind)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var future workflow.Future
	switch decision.Kind {
	case DecisionApprove:
		future = workflow.ExecuteActivity(ctx, orderactivities.ApproveOrderActivityName, types.ApproveOrderInput{
			Actor:          decision.Actor,
			IdempotencyKey: decision.IdempotencyKey,
			OrderID:        decision.OrderID,
			Remarks:        decision.Remarks,
		})
	case DecisionReject:
		future = workflow.ExecuteActivity(ctx, orderactivities.RejectOrderActivityName, types.RejectOrderInput{
			Actor:          decision.Actor,
			IdempotencyKey: decision.IdempotencyKey,
			OrderID:        decision.OrderID,
			Remarks:        decision.Remarks,
		})
	default:
		return nil, temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown decision %q", decision.Kind), "unknown_decision", nil)
	}

	var order domain.Order
	if err := future.Get(ctx, &order); err != nil {
		logger.Error("order decision sequence failed", "orderId", decision.OrderID, "error", err)
		return nil, err
	}
	logger.Info("order decision sequence completed", "orderId", order.ID, "status", string(order.Status))
	return &order, nil
}
