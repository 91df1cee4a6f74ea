package types

import (
	"github.com/shopspring/decimal"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

// PlaceOrderInput carries a checked-out cart into the lifecycle.
type PlaceOrderInput struct {
	Actor          domain.Actor
	IdempotencyKey string
	OrderNumber    string
	CustomerID     string
	TotalAmount    decimal.Decimal
	Currency       string
	PaymentStatus  string
}

// ApproveOrderInput records an admin approval. Remarks are optional.
type ApproveOrderInput struct {
	Actor          domain.Actor
	IdempotencyKey string
	OrderID        string
	Remarks        string
}

// RejectOrderInput records an admin rejection. Remarks are required.
type RejectOrderInput struct {
	Actor          domain.Actor
	IdempotencyKey string
	OrderID        string
	Remarks        string
}

// UpdateOrderStatusInput advances fulfillment by one stage.
type UpdateOrderStatusInput struct {
	Actor          domain.Actor
	IdempotencyKey string
	OrderID        string
	Status         string
	Note           string
}

// CancelOrderInput withdraws an order before fulfillment starts.
type CancelOrderInput struct {
	Actor          domain.Actor
	IdempotencyKey string
	OrderID        string
	Reason         string
}
