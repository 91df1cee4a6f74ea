package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusConfirmed        Status = "confirmed"
	StatusProcessing       Status = "processing"
	StatusShipped          Status = "shipped"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
	StatusRejected         Status = "rejected"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{
	StatusAwaitingApproval,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRejected,
}

// ParseStatus converts raw input into a known status.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(strings.ToLower(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Valid reports whether the status is a member of the enum.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave the status.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRejected
}

// Fulfillment reports whether the status is a post-approval fulfillment stage.
func (s Status) Fulfillment() bool {
	switch s {
	case StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	default:
		return false
	}
}

// ApprovalStatus is the admin decision state derived from the order status.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	// ApprovalWithdrawn marks an order cancelled before any admin decision.
	ApprovalWithdrawn ApprovalStatus = "withdrawn"
)

// PaymentStatus is carried for display only and never drives a transition.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ParsePaymentStatus defaults empty input to pending.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch status := PaymentStatus(strings.TrimSpace(strings.ToLower(raw))); status {
	case "":
		return PaymentPending, nil
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return status, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// Role identifies what kind of actor invokes a transition.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Actor references the customer or admin acting on an order.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Decision carries the payload of an admin approve/reject decision.
type Decision struct {
	Remarks   string
	DecidedBy Actor
	DecidedAt time.Time
}

// AdminApproval is the read view of the approval sub-record.
type AdminApproval struct {
	Status    ApprovalStatus
	Remarks   string
	DecidedBy *Actor
	DecidedAt *time.Time
}

// Order is the aggregate governed by the approval and fulfillment lifecycle.
type Order struct {
	ID            string
	OrderNumber   string
	CustomerID    string
	Status        Status
	Decision      *Decision
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	Currency      string
	Timeline      []Event
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// NewOrder builds an order in awaiting_approval with its opening timeline entry.
func NewOrder(id, orderNumber, customerID string, total decimal.Decimal, currency string, payment PaymentStatus, now time.Time) (*Order, error) {
	if payment == "" {
		payment = PaymentPending
	}
	order := &Order{
		ID:            strings.TrimSpace(id),
		OrderNumber:   strings.TrimSpace(orderNumber),
		CustomerID:    strings.TrimSpace(customerID),
		Status:        StatusAwaitingApproval,
		PaymentStatus: payment,
		TotalAmount:   total,
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	order.Timeline = []Event{{
		Status:    StatusAwaitingApproval,
		Note:      "Order placed",
		Timestamp: now,
		UpdatedBy: &Actor{ID: order.CustomerID, Role: RoleCustomer},
	}}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces the aggregate invariants.
func (o *Order) Validate() error {
	if o.ID == "" {
		return ErrMissingID
	}
	if o.OrderNumber == "" {
		return ErrMissingOrderNumber
	}
	if o.CustomerID == "" {
		return ErrMissingCustomer
	}
	if o.TotalAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	switch {
	case o.Status == StatusAwaitingApproval && o.Decision != nil:
		return ErrInconsistentState
	case o.Status.Fulfillment() && o.Decision == nil:
		return ErrInconsistentState
	case o.Status == StatusRejected && (o.Decision == nil || strings.TrimSpace(o.Decision.Remarks) == ""):
		return ErrInconsistentState
	}
	return nil
}

// Approval derives the approval sub-record from the status and decision.
func (o *Order) Approval() AdminApproval {
	view := AdminApproval{}
	switch {
	case o.Status == StatusAwaitingApproval:
		view.Status = ApprovalPending
	case o.Status == StatusRejected:
		view.Status = ApprovalRejected
	case o.Decision != nil:
		view.Status = ApprovalApproved
	default:
		view.Status = ApprovalWithdrawn
	}
	if o.Decision != nil {
		by := o.Decision.DecidedBy
		at := o.Decision.DecidedAt
		view.Remarks = o.Decision.Remarks
		view.DecidedBy = &by
		view.DecidedAt = &at
	}
	return view
}

// OwnedBy reports whether the customer id owns the order.
func (o *Order) OwnedBy(customerID string) bool {
	return customerID != "" && o.CustomerID == customerID
}

// Clone returns a deep copy so callers never share timeline or decision memory.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Decision != nil {
		decision := *o.Decision
		clone.Decision = &decision
	}
	clone.Timeline = make([]Event, len(o.Timeline))
	for i, event := range o.Timeline {
		clone.Timeline[i] = event.clone()
	}
	return &clone
}

// LatestEvent returns the most recently appended timeline event.
func (o *Order) LatestEvent() (Event, bool) {
	if len(o.Timeline) == 0 {
		return Event{}, false
	}
	return o.Timeline[len(o.Timeline)-1], true
}

// transitionTo returns a copy moved to the target status with one appended event.
func (o *Order) transitionTo(to Status, note string, actor Actor, now time.Time) *Order {
	next := o.Clone()
	next.Status = to
	next.UpdatedAt = now
	next.Version++
	by := actor
	next.Timeline = append(next.Timeline, Event{
		Status:    to,
		Note:      note,
		Timestamp: now,
		UpdatedBy: &by,
	})
	return next
}
