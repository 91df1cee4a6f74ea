package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/durable/temporal/sequences"
)

const (
	// OrderDecisionWorkflowName is the public identifier for registering the workflow.
	OrderDecisionWorkflowName = "orders.workflows.Decision"
	// OrderDecisionTaskQueue is the queue consumed by the worker processing decision workflows.
	OrderDecisionTaskQueue = "ORDER_DECISIONS"
)

// OrderDecisionWorkflowInput carries an admin approve or reject decision.
type OrderDecisionWorkflowInput struct {
	Decision sequences.OrderDecision
	TraceID  string
}

// OrderDecisionWorkflow applies one admin decision to an order.
func OrderDecisionWorkflow(ctx workflow.Context, input OrderDecisionWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Decision.OrderID
	logger.Info("OrderDecisionWorkflow started", withTraceID(input.TraceID, "orderId", orderID, "kind", input.Decision.Kind)...)
	order, err := sequences.RunOrderDecisionSequence(ctx, input.Decision)
	if err != nil {
		logger.Error("OrderDecisionWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderDecisionWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID, "status", string(order.Status))...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
