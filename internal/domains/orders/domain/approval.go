package domain

import (
	"strings"
	"time"
)

// Approve records an admin approval and moves the order to confirmed.
// Remarks are optional. A second decision on the same order fails with ErrNotPending.
func Approve(order *Order, admin Actor, remarks string, now time.Time) (*Order, error) {
	if order == nil {
		return nil, errNilOrder
	}
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := requirePending(order, StatusConfirmed, KindApproval); err != nil {
		return nil, err
	}
	remarks = strings.TrimSpace(remarks)
	note := remarks
	if note == "" {
		note = "Order approved"
	}
	next := order.transitionTo(StatusConfirmed, note, admin, now)
	next.Decision = &Decision{Remarks: remarks, DecidedBy: admin, DecidedAt: now}
	return next, nil
}

// Reject records an admin rejection. Remarks are mandatory and become the timeline note.
func Reject(order *Order, admin Actor, remarks string, now time.Time) (*Order, error) {
	if order == nil {
		return nil, errNilOrder
	}
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return nil, ErrReasonRequired
	}
	if err := requirePending(order, StatusRejected, KindRejection); err != nil {
		return nil, err
	}
	next := order.transitionTo(StatusRejected, remarks, admin, now)
	next.Decision = &Decision{Remarks: remarks, DecidedBy: admin, DecidedAt: now}
	return next, nil
}

func requirePending(order *Order, to Status, kind TransitionKind) error {
	if order.Approval().Status != ApprovalPending {
		return ErrNotPending
	}
	if _, ok := lookup(order.Status, to, kind); !ok {
		return ErrNotPending
	}
	return nil
}
