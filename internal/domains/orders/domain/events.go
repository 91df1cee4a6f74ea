package domain

import "time"

// EventName identifiers used when status changes are published.
const (
	EventOrderPlaced        = "orders.order.placed"
	EventOrderStatusChanged = "orders.order.status_changed"
)

// StatusChanged is raised after a transition has been persisted.
type StatusChanged struct {
	OrderID     string
	OrderNumber string
	CustomerID  string
	From        Status
	To          Status
	Kind        TransitionKind
	Actor       Actor
	Note        string
	Version     int64
	Timestamp   time.Time
}

// EventName returns the event type identifier.
func (e StatusChanged) EventName() string {
	if e.From == "" {
		return EventOrderPlaced
	}
	return EventOrderStatusChanged
}

// OccurredAt returns when the transition happened.
func (e StatusChanged) OccurredAt() time.Time {
	return e.Timestamp
}

// NewStatusChanged describes the move from prev to next using the newest timeline event.
// A nil prev describes order placement.
func NewStatusChanged(prev, next *Order) StatusChanged {
	event := StatusChanged{
		OrderID:     next.ID,
		OrderNumber: next.OrderNumber,
		CustomerID:  next.CustomerID,
		To:          next.Status,
		Version:     next.Version,
		Timestamp:   next.UpdatedAt,
	}
	if prev != nil {
		event.From = prev.Status
		event.Kind, _ = KindOf(prev.Status, next.Status)
	}
	if latest, ok := next.LatestEvent(); ok {
		event.Note = latest.Note
		event.Timestamp = latest.Timestamp
		if latest.UpdatedBy != nil {
			event.Actor = *latest.UpdatedBy
		}
	}
	return event
}
