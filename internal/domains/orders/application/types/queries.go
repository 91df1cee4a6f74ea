package types

import "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"

// OrderIdentifier addresses a single order on behalf of an actor.
type OrderIdentifier struct {
	Actor   domain.Actor
	OrderID string
}

// ListOrdersInput filters the order listing. Customers only ever see their own orders.
type ListOrdersInput struct {
	Actor          domain.Actor
	Statuses       []string
	CustomerID     string
	ApprovalStatus string
}

// TimelineInput selects the timeline projection for an order.
type TimelineInput struct {
	Actor   domain.Actor
	OrderID string
	View    string
}

// DashboardInput requests admin dashboard statistics.
type DashboardInput struct {
	Actor domain.Actor
}
