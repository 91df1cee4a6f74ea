package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application"
	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

const (
	// ApproveOrderActivityName applies an admin approval through the orders service.
	ApproveOrderActivityName = "orders.activities.ApproveOrder"
	// RejectOrderActivityName applies an admin rejection through the orders service.
	RejectOrderActivityName = "orders.activities.RejectOrder"
)

// Activities groups the activities that decide orders.
type Activities struct {
	service ports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// ApproveOrder approves the order and returns its new state.
func (a *Activities) ApproveOrder(ctx context.Context, input types.ApproveOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order decision activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("order decision activity not initialized")
	}
	logger.Info("ApproveOrder activity started", "orderId", input.OrderID)
	order, err := a.service.ApproveOrder(ctx, input)
	if err != nil {
		logger.Error("ApproveOrder activity failed", "orderId", input.OrderID, "error", err)
		return nil, classify(err)
	}
	logger.Info("ApproveOrder activity completed", "orderId", order.ID, "status", string(order.Status))
	return order, nil
}

// RejectOrder rejects the order and returns its new state.
func (a *Activities) RejectOrder(ctx context.Context, input types.RejectOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order decision activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("order decision activity not initialized")
	}
	logger.Info("RejectOrder activity started", "orderId", input.OrderID)
	order, err := a.service.RejectOrder(ctx, input)
	if err != nil {
		logger.Error("RejectOrder activity failed", "orderId", input.OrderID, "error", err)
		return nil, classify(err)
	}
	logger.Info("RejectOrder activity completed", "orderId", order.ID, "status", string(order.Status))
	return order, nil
}

// classify turns known failures into non-retryable application errors whose type is the error code,
// so callers can rebuild the categorised error after it crosses the workflow boundary.
func classify(err error) error {
	code := application.ErrorCode(err)
	if code == "" {
		return err
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), code, err)
}
