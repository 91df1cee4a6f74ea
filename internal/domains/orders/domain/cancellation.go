package domain

import (
	"strings"
	"time"
)

// Cancel withdraws an order that has not yet entered fulfillment.
// Ownership is checked before the reason and the reason before the status.
func Cancel(order *Order, actor Actor, reason string, now time.Time) (*Order, error) {
	if order == nil {
		return nil, errNilOrder
	}
	switch actor.Role {
	case RoleAdmin:
	case RoleCustomer:
		if !order.OwnedBy(actor.ID) {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	r, ok := lookup(order.Status, StatusCancelled, KindCancellation)
	if !ok {
		return nil, ErrNotCancellable
	}
	if !r.permits(actor.Role) {
		return nil, ErrForbidden
	}
	return order.transitionTo(StatusCancelled, reason, actor, now), nil
}
