package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrTimelineRewrite is returned when an update would drop stored timeline events.
var ErrTimelineRewrite = errors.New("timeline events cannot be removed")

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byNumber map[string]string
}

// NewRepository constructs an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		orders:   map[string]*domain.Order{},
		byNumber: map[string]string{},
	}
}

// Create stores a new order. Order numbers are unique.
func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byNumber[order.OrderNumber]; exists {
		return nil, ports.ErrDuplicateOrderNumber
	}
	if _, exists := r.orders[order.ID]; exists {
		return nil, ports.ErrConflict
	}
	r.orders[order.ID] = order.Clone()
	r.byNumber[order.OrderNumber] = order.ID
	return order.Clone(), nil
}

// GetByID returns a copy of the stored order.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// List returns copies of matching orders, newest first.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if !matches(order, filter) {
			continue
		}
		list = append(list, order.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].OrderNumber > list[j].OrderNumber
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// Update swaps in the new state only when the stored status and version match expected.
func (r *Repository) Update(_ context.Context, order *domain.Order, expected ports.Precondition) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.Status != expected.Status || stored.Version != expected.Version {
		return nil, ports.ErrConflict
	}
	if len(order.Timeline) < len(stored.Timeline) {
		return nil, ErrTimelineRewrite
	}
	next := order.Clone()
	// Stored events win over whatever the caller carried for the same positions.
	copy(next.Timeline, stored.Clone().Timeline)
	r.orders[order.ID] = next
	return next.Clone(), nil
}

func matches(order *domain.Order, filter ports.ListFilter) bool {
	if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, status := range filter.Statuses {
		if order.Status == status {
			return true
		}
	}
	return false
}
