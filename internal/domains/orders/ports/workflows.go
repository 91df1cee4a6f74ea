package ports

import (
	"context"

	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

// DecisionWorkflows runs admin approve/reject decisions, durably when a workflow engine is available.
type DecisionWorkflows interface {
	ApproveOrder(ctx context.Context, input types.ApproveOrderInput) (*domain.Order, error)
	RejectOrder(ctx context.Context, input types.RejectOrderInput) (*domain.Order, error)
}
