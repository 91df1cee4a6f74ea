package ports

import (
	"context"

	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

// Service exposes the order lifecycle use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error)
	ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error)
	ApproveOrder(ctx context.Context, input types.ApproveOrderInput) (*domain.Order, error)
	RejectOrder(ctx context.Context, input types.RejectOrderInput) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, input types.CancelOrderInput) (*domain.Order, error)
	Timeline(ctx context.Context, input types.TimelineInput) ([]domain.Event, error)
	DashboardStats(ctx context.Context, input types.DashboardInput) (domain.Stats, error)
}
