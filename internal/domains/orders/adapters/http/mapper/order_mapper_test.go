package mapper

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

func TestFromDomainOrder_ViewerSpecificTransitions(t *testing.T) {
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	order, err := domain.NewOrder("ord-1", "ORD-1", "cust-1", decimal.RequireFromString("10.5"), "inr", "", now)
	require.NoError(t, err)

	owner := FromDomainOrder(order, domain.Actor{ID: "cust-1", Role: domain.RoleCustomer})
	assert.Equal(t, "10.50", owner.TotalAmount)
	assert.Equal(t, "INR", owner.Currency)
	assert.Equal(t, "pending", owner.AdminApproval.Status)
	assert.Equal(t, []string{"cancelled"}, owner.AllowedTransitions)
	require.Len(t, owner.Timeline, 1)
	require.NotNil(t, owner.Timeline[0].UpdatedBy)
	assert.Equal(t, "customer", owner.Timeline[0].UpdatedBy.Role)

	stranger := FromDomainOrder(order, domain.Actor{ID: "cust-2", Role: domain.RoleCustomer})
	assert.Empty(t, stranger.AllowedTransitions)
	assert.NotNil(t, stranger.AllowedTransitions)

	admin := FromDomainOrder(order, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	assert.Equal(t, []string{"confirmed", "cancelled", "rejected"}, admin.AllowedTransitions)
}

func TestFromDomainStats_FormatsMoney(t *testing.T) {
	stats := FromDomainStats(domain.Stats{
		TotalOrders:      3,
		PendingApprovals: 1,
		OrdersByStatus:   map[domain.Status]int{domain.StatusDelivered: 2, domain.StatusAwaitingApproval: 1},
		Revenue: domain.Revenue{
			TotalRevenue:      decimal.RequireFromString("300"),
			AverageOrderValue: decimal.RequireFromString("150"),
			DeliveredOrders:   2,
		},
	})
	assert.Equal(t, "300.00", stats.Revenue.TotalRevenue)
	assert.Equal(t, "150.00", stats.Revenue.AverageOrderValue)
	assert.Equal(t, 2, stats.OrdersByStatus["delivered"])
}

func TestFromDomainOrder_Nil(t *testing.T) {
	assert.Equal(t, Order{}, FromDomainOrder(nil, domain.Actor{}))
}
