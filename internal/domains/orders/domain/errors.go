package domain

import "errors"

// Validation errors.
var (
	ErrReasonRequired       = errors.New("a non-empty reason is required")
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrInvalidPaymentStatus = errors.New("payment status is invalid")
	ErrInvalidAmount        = errors.New("total amount must not be negative")
	ErrMissingID            = errors.New("order id is required")
	ErrMissingOrderNumber   = errors.New("order number is required")
	ErrMissingCustomer      = errors.New("customer id is required")
	ErrInvalidTimelineView  = errors.New("timeline view must be full or display")
)

// Authorization errors.
var (
	ErrForbidden = errors.New("actor is not allowed to perform this transition")
)

// State conflict errors. Each means the caller acted on a stale view of the order.
var (
	ErrNotPending        = errors.New("order is not awaiting approval")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
	ErrInvalidTransition = errors.New("transition is not allowed from the current status")
	ErrAlreadyTerminal   = errors.New("order is in a terminal status")
)

// ErrInconsistentState flags a persisted order whose status and decision disagree.
var ErrInconsistentState = errors.New("order status and approval decision are inconsistent")

var codes = []struct {
	err  error
	code string
}{
	{ErrReasonRequired, "reason_required"},
	{ErrInvalidStatus, "invalid_status"},
	{ErrInvalidPaymentStatus, "invalid_payment_status"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrMissingID, "missing_id"},
	{ErrMissingOrderNumber, "missing_order_number"},
	{ErrMissingCustomer, "missing_customer"},
	{ErrInvalidTimelineView, "invalid_timeline_view"},
	{ErrForbidden, "forbidden"},
	{ErrNotPending, "not_pending"},
	{ErrNotCancellable, "not_cancellable"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrAlreadyTerminal, "already_terminal"},
	{ErrInconsistentState, "inconsistent_state"},
}

// Code returns the stable machine-readable code for a domain error, or "".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// ErrorForCode is the inverse of Code.
func ErrorForCode(code string) (error, bool) {
	for _, c := range codes {
		if c.code == code {
			return c.err, true
		}
	}
	return nil, false
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrReasonRequired) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPaymentStatus) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrMissingID) ||
		errors.Is(err, ErrMissingOrderNumber) ||
		errors.Is(err, ErrMissingCustomer) ||
		errors.Is(err, ErrInvalidTimelineView)
}

// IsStateConflict reports whether err means the order moved on since it was read.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrNotCancellable) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAlreadyTerminal)
}
