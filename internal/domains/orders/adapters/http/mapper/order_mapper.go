package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

// PlaceOrderRequest is the checkout ingestion payload.
type PlaceOrderRequest struct {
	OrderNumber   string `json:"orderNumber" validate:"omitempty,max=64"`
	CustomerID    string `json:"customerId" validate:"omitempty,max=64"`
	TotalAmount   string `json:"totalAmount" validate:"required,numeric"`
	Currency      string `json:"currency" validate:"omitempty,len=3,alpha"`
	PaymentStatus string `json:"paymentStatus" validate:"omitempty,oneof=pending completed failed refunded"`
}

// ApproveOrderRequest carries optional approval remarks.
type ApproveOrderRequest struct {
	Remarks string `json:"remarks" validate:"max=1000"`
}

// RejectOrderRequest carries the rejection reason. Emptiness is judged by the domain.
type RejectOrderRequest struct {
	Remarks string `json:"remarks" validate:"max=1000"`
}

// UpdateOrderStatusRequest moves an order along fulfillment.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed processing shipped delivered"`
	Note   string `json:"note" validate:"max=1000"`
}

// CancelOrderRequest carries the cancellation reason. Emptiness is judged by the domain.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// Actor is the transport view of an acting customer or admin.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// AdminApproval is the derived approval sub-record.
type AdminApproval struct {
	Status    string     `json:"status"`
	Remarks   string     `json:"remarks,omitempty"`
	DecidedBy *Actor     `json:"decidedBy,omitempty"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
}

// TimelineEvent is one entry of an order timeline.
type TimelineEvent struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy *Actor    `json:"updatedBy,omitempty"`
}

// Order is the full order representation returned by every endpoint.
type Order struct {
	ID                 string          `json:"id"`
	OrderNumber        string          `json:"orderNumber"`
	CustomerID         string          `json:"customerId"`
	Status             string          `json:"status"`
	AdminApproval      AdminApproval   `json:"adminApproval"`
	PaymentStatus      string          `json:"paymentStatus"`
	TotalAmount        string          `json:"totalAmount"`
	Currency           string          `json:"currency"`
	Timeline           []TimelineEvent `json:"timeline"`
	AllowedTransitions []string        `json:"allowedTransitions"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Revenue summarises delivered orders.
type Revenue struct {
	TotalRevenue      string `json:"totalRevenue"`
	AverageOrderValue string `json:"averageOrderValue"`
	DeliveredOrders   int    `json:"deliveredOrders"`
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	TotalOrders      int            `json:"totalOrders"`
	PendingApprovals int            `json:"pendingApprovals"`
	OrdersByStatus   map[string]int `json:"ordersByStatus"`
	Revenue          Revenue        `json:"revenue"`
}

// ParseAmount converts the checkout amount string to a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(raw)
}

// FromDomainOrder renders order as seen by viewer. Timeline entries are in insertion order.
func FromDomainOrder(order *domain.Order, viewer domain.Actor) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		CustomerID:         order.CustomerID,
		Status:             string(order.Status),
		AdminApproval:      fromApproval(order.Approval()),
		PaymentStatus:      string(order.PaymentStatus),
		TotalAmount:        order.TotalAmount.StringFixed(2),
		Currency:           order.Currency,
		Timeline:           FromDomainTimeline(order.Timeline),
		AllowedTransitions: []string{},
		Version:            order.Version,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
	for _, status := range domain.AvailableTransitions(order, viewer) {
		out.AllowedTransitions = append(out.AllowedTransitions, string(status))
	}
	return out
}

// FromDomainOrders renders a list of orders.
func FromDomainOrders(orders []*domain.Order, viewer domain.Actor) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order, viewer))
	}
	return out
}

// FromDomainTimeline renders timeline events in the order given.
func FromDomainTimeline(events []domain.Event) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(events))
	for _, event := range events {
		out = append(out, TimelineEvent{
			Status:    string(event.Status),
			Note:      event.Note,
			Timestamp: event.Timestamp,
			UpdatedBy: fromActor(event.UpdatedBy),
		})
	}
	return out
}

// FromDomainStats renders dashboard statistics with money as fixed two-decimal strings.
func FromDomainStats(stats domain.Stats) DashboardStats {
	out := DashboardStats{
		TotalOrders:      stats.TotalOrders,
		PendingApprovals: stats.PendingApprovals,
		OrdersByStatus:   make(map[string]int, len(stats.OrdersByStatus)),
		Revenue: Revenue{
			TotalRevenue:      stats.Revenue.TotalRevenue.StringFixed(2),
			AverageOrderValue: stats.Revenue.AverageOrderValue.StringFixed(2),
			DeliveredOrders:   stats.Revenue.DeliveredOrders,
		},
	}
	for status, count := range stats.OrdersByStatus {
		out.OrdersByStatus[string(status)] = count
	}
	return out
}

func fromApproval(approval domain.AdminApproval) AdminApproval {
	return AdminApproval{
		Status:    string(approval.Status),
		Remarks:   approval.Remarks,
		DecidedBy: fromActor(approval.DecidedBy),
		DecidedAt: approval.DecidedAt,
	}
}

func fromActor(actor *domain.Actor) *Actor {
	if actor == nil {
		return nil
	}
	return &Actor{ID: actor.ID, Role: string(actor.Role)}
}
