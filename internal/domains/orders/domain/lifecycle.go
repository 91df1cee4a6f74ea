package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errNilOrder = errors.New("order is nil")

// AdvanceStatus moves an approved order one fulfillment stage forward.
// The input order is never mutated; on success a copy carrying one new
// timeline event is returned.
func AdvanceStatus(order *Order, actor Actor, requested Status, note string, now time.Time) (*Order, error) {
	if order == nil {
		return nil, errNilOrder
	}
	if !requested.Valid() {
		return nil, ErrInvalidStatus
	}
	if !actor.Role.Valid() {
		return nil, ErrForbidden
	}
	if order.Status.Terminal() {
		return nil, ErrAlreadyTerminal
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if order.Approval().Status != ApprovalApproved {
		return nil, ErrForbidden
	}
	r, ok := lookup(order.Status, requested, KindFulfillment)
	if !ok || !r.permits(actor.Role) {
		return nil, ErrInvalidTransition
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = fmt.Sprintf("Order status updated to %s", requested)
	}
	return order.transitionTo(requested, note, actor, now), nil
}
