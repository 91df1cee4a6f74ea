package domain

import "github.com/shopspring/decimal"

// Revenue summarises delivered orders.
type Revenue struct {
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	DeliveredOrders   int
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalOrders      int
	PendingApprovals int
	OrdersByStatus   map[Status]int
	Revenue          Revenue
}

// Aggregate folds the order set into dashboard statistics.
// An empty set yields zeroed stats with a zero average.
func Aggregate(orders []*Order) Stats {
	stats := Stats{
		OrdersByStatus: map[Status]int{},
		Revenue: Revenue{
			TotalRevenue:      decimal.Zero,
			AverageOrderValue: decimal.Zero,
		},
	}
	for _, order := range orders {
		if order == nil {
			continue
		}
		stats.TotalOrders++
		stats.OrdersByStatus[order.Status]++
		if order.Approval().Status == ApprovalPending {
			stats.PendingApprovals++
		}
		if order.Status == StatusDelivered {
			stats.Revenue.DeliveredOrders++
			stats.Revenue.TotalRevenue = stats.Revenue.TotalRevenue.Add(order.TotalAmount)
		}
	}
	if stats.Revenue.DeliveredOrders > 0 {
		count := decimal.NewFromInt(int64(stats.Revenue.DeliveredOrders))
		stats.Revenue.AverageOrderValue = stats.Revenue.TotalRevenue.DivRound(count, 2)
	}
	return stats
}
