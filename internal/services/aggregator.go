package services

import (
	"time"

	"github.com/marwari-basket/api/internal/domain"
)

// CustomerStats summarises a customer's order history. A nil LastOrderAt
// means the customer has never placed an order.
type CustomerStats struct {
	TotalSpent  int64
	TotalOrders int
	LastOrderAt *time.Time
}

// TotalItemCount sums line item quantities across one order.
func TotalItemCount(order domain.Order) int {
	total := 0
	for _, item := range order.Items {
		total += item.Quantity
	}
	return total
}

// ItemCount sums line item quantities across all given orders.
func ItemCount(orders []domain.Order) int {
	total := 0
	for _, order := range orders {
		total += TotalItemCount(order)
	}
	return total
}

// AverageOrderValue returns the mean order total in minor currency units.
// The second return is false when there are no orders to average.
func AverageOrderValue(orders []domain.Order) (float64, bool) {
	if len(orders) == 0 {
		return 0, false
	}
	var sum int64
	for _, order := range orders {
		sum += order.Total
	}
	return float64(sum) / float64(len(orders)), true
}

// CustomerRollup aggregates spend, order count and most recent placement
// across a customer's orders. An empty history yields zero totals and a nil
// LastOrderAt.
func CustomerRollup(orders []domain.Order) CustomerStats {
	stats := CustomerStats{TotalOrders: len(orders)}
	for _, order := range orders {
		stats.TotalSpent += order.Total
		placed := order.CreatedAt
		if stats.LastOrderAt == nil || placed.After(*stats.LastOrderAt) {
			last := placed
			stats.LastOrderAt = &last
		}
	}
	return stats
}
