package ports

import (
	"context"
	"errors"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict means the stored order no longer matched the expected status and version.
	ErrConflict             = errors.New("order was modified concurrently")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Statuses   []domain.Status
	CustomerID string
}

// Precondition is the state a conditional update expects to find in storage.
type Precondition struct {
	Status  domain.Status
	Version int64
}

// Repository persists orders and their append-only timeline.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns matching orders, newest first.
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
	// Update stores order only if the persisted row still matches expected,
	// otherwise it returns ErrConflict. New timeline events are appended, existing ones are never rewritten.
	Update(ctx context.Context, order *domain.Order, expected Precondition) (*domain.Order, error)
}
