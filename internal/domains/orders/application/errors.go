package application

import (
	"errors"
	"fmt"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant; fix the input.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the actor may not perform the operation.
	ErrForbidden = errors.New("order operation forbidden")
	// ErrStateConflict signals the caller acted on a stale view; refetch the order.
	ErrStateConflict = errors.New("order state conflict")
	// ErrConcurrentUpdate signals another actor changed the order first; refetch the order.
	ErrConcurrentUpdate = errors.New("order was updated concurrently")
)

// Error codes for failures that do not originate in the domain.
const (
	CodeNotFound            = "not_found"
	CodeConcurrentUpdate    = "concurrent_update"
	CodeIdempotencyConflict = "idempotency_conflict"
	CodeIdempotencyPending  = "idempotency_in_progress"
	CodeDuplicateOrder      = "duplicate_order_number"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrStateConflict),
		errors.Is(err, ErrConcurrentUpdate):
		return err
	case domain.IsValidation(err):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case domain.IsStateConflict(err):
		return fmt.Errorf("%w: %w", ErrStateConflict, err)
	case errors.Is(err, ports.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConcurrentUpdate, err)
	}
	return err
}

// ErrorCode returns a stable code identifying err, or "" for unexpected failures.
func ErrorCode(err error) string {
	if code := domain.Code(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ports.ErrConflict), errors.Is(err, ErrConcurrentUpdate):
		return CodeConcurrentUpdate
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return CodeIdempotencyConflict
	case errors.Is(err, ports.ErrIdempotencyInProgress):
		return CodeIdempotencyPending
	case errors.Is(err, ports.ErrDuplicateOrderNumber):
		return CodeDuplicateOrder
	}
	return ""
}

// ErrorFromCode rebuilds a categorised error from a code produced by ErrorCode.
// It is used where errors cross a serialization boundary.
func ErrorFromCode(code, message string) error {
	if domainErr, ok := domain.ErrorForCode(code); ok {
		return mapError(domainErr)
	}
	switch code {
	case CodeNotFound:
		return ports.ErrNotFound
	case CodeConcurrentUpdate:
		return mapError(ports.ErrConflict)
	case CodeIdempotencyConflict:
		return ports.ErrIdempotencyConflict
	case CodeIdempotencyPending:
		return ports.ErrIdempotencyInProgress
	case CodeDuplicateOrder:
		return ports.ErrDuplicateOrderNumber
	}
	return errors.New(message)
}
