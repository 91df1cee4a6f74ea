package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var (
	baseTime = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	admin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
)

func newOrder(t *testing.T, id, number, customer string, created time.Time) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(id, number, customer, decimal.NewFromInt(100), "INR", domain.PaymentPending, created)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	order := newOrder(t, "ord-1", "ORD-1", "cust-1", baseTime)

	saved, err := repo.Create(ctx, order)
	require.NoError(t, err)
	require.Equal(t, order, saved)

	fetched, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	require.Equal(t, order, fetched)

	fetched.Timeline[0].Note = "mutated"
	again, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	require.Equal(t, "Order placed", again.Timeline[0].Note)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CreateRejectsDuplicateOrderNumber(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, newOrder(t, "ord-1", "ORD-1", "cust-1", baseTime))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newOrder(t, "ord-2", "ORD-1", "cust-2", baseTime))
	require.ErrorIs(t, err, ports.ErrDuplicateOrderNumber)
}

func TestRepository_UpdateIsConditional(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	order := newOrder(t, "ord-1", "ORD-1", "cust-1", baseTime)
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	approved, err := domain.Approve(order, admin, "", baseTime.Add(time.Minute))
	require.NoError(t, err)
	expected := ports.Precondition{Status: order.Status, Version: order.Version}

	saved, err := repo.Update(ctx, approved, expected)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, saved.Status)
	require.Equal(t, int64(2), saved.Version)

	rejected, err := domain.Reject(order, admin, "late", baseTime.Add(2*time.Minute))
	require.NoError(t, err)
	_, err = repo.Update(ctx, rejected, expected)
	require.ErrorIs(t, err, ports.ErrConflict)

	stored, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestRepository_UpdateKeepsTimeline(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	order := newOrder(t, "ord-1", "ORD-1", "cust-1", baseTime)
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	approved, err := domain.Approve(order, admin, "", baseTime.Add(time.Minute))
	require.NoError(t, err)
	approved.Timeline = approved.Timeline[:0]
	_, err = repo.Update(ctx, approved, ports.Precondition{Status: order.Status, Version: order.Version})
	require.ErrorIs(t, err, ErrTimelineRewrite)

	approved, err = domain.Approve(order, admin, "", baseTime.Add(time.Minute))
	require.NoError(t, err)
	approved.Timeline[0].Note = "rewritten"
	saved, err := repo.Update(ctx, approved, ports.Precondition{Status: order.Status, Version: order.Version})
	require.NoError(t, err)
	require.Len(t, saved.Timeline, 2)
	require.Equal(t, "Order placed", saved.Timeline[0].Note)
}

func TestRepository_UpdateMissingOrder(t *testing.T) {
	repo := NewRepository()
	order := newOrder(t, "ord-1", "ORD-1", "cust-1", baseTime)
	_, err := repo.Update(context.Background(), order, ports.Precondition{Status: order.Status, Version: 1})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListFiltersAndOrders(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	first := newOrder(t, "ord-1", "ORD-1", "cust-1", baseTime)
	second := newOrder(t, "ord-2", "ORD-2", "cust-2", baseTime.Add(time.Hour))
	third := newOrder(t, "ord-3", "ORD-3", "cust-1", baseTime.Add(2*time.Hour))
	for _, order := range []*domain.Order{first, second, third} {
		_, err := repo.Create(ctx, order)
		require.NoError(t, err)
	}
	approved, err := domain.Approve(third, admin, "", baseTime.Add(3*time.Hour))
	require.NoError(t, err)
	_, err = repo.Update(ctx, approved, ports.Precondition{Status: third.Status, Version: third.Version})
	require.NoError(t, err)

	all, err := repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"ord-3", "ord-2", "ord-1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := repo.List(ctx, ports.ListFilter{CustomerID: "cust-1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	pending, err := repo.List(ctx, ports.ListFilter{Statuses: []domain.Status{domain.StatusAwaitingApproval}})
	require.NoError(t, err)
	require.Len(t, pending, 2)

	confirmedMine, err := repo.List(ctx, ports.ListFilter{CustomerID: "cust-1", Statuses: []domain.Status{domain.StatusConfirmed}})
	require.NoError(t, err)
	require.Len(t, confirmedMine, 1)
	require.Equal(t, "ord-3", confirmedMine[0].ID)
}
