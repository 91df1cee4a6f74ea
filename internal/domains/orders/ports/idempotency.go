package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyConflict reports a retry key reused for a different request.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrIdempotencyInProgress reports a retry key whose first request has not finished yet.
	ErrIdempotencyInProgress = errors.New("request with this idempotency key is still in progress")
)

// IdempotencyEntry binds a retry key to the fingerprint of the first request that carried it
// and, once that request finished, to the order it produced.
type IdempotencyEntry struct {
	Key         string
	Fingerprint string
	// OrderID is empty while the reserving request is still running.
	OrderID    string
	RecordedAt time.Time
}

// Pending reports whether the request holding the key has not completed.
func (e IdempotencyEntry) Pending() bool {
	return e.OrderID == ""
}

// IdempotencyStore remembers retry keys of mutating order calls.
// A key is reserved before the work runs, then completed with the resulting order
// or released when the work failed.
type IdempotencyStore interface {
	// Lookup returns nil and no error for an unknown key.
	Lookup(ctx context.Context, key string) (*IdempotencyEntry, error)
	// Reserve claims entry.Key for entry.Fingerprint. When the key is already held,
	// the stored entry is returned with claimed set to false.
	Reserve(ctx context.Context, entry IdempotencyEntry) (stored *IdempotencyEntry, claimed bool, err error)
	// Complete attaches orderID to a pending reservation.
	Complete(ctx context.Context, key, orderID string) error
	// Release drops a pending reservation. Completed keys are left untouched.
	Release(ctx context.Context, key string) error
}
