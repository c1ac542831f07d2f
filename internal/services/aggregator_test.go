package services

import (
	"testing"
	"time"

	"github.com/marwari-basket/api/internal/domain"
)

func TestTotalItemCount(t *testing.T) {
	order := testOrder("ord_1", domain.OrderStatusPending)
	order.Items = []domain.LineItem{
		{ProductRef: "prd_1", Name: "Brass Diya", UnitPrice: 45000, Quantity: 2},
		{ProductRef: "prd_2", Name: "Bandhani Dupatta", UnitPrice: 120000, Quantity: 3},
	}

	if got := TotalItemCount(order); got != 5 {
		t.Fatalf("TotalItemCount = %d, want 5", got)
	}

	order.Items = nil
	if got := TotalItemCount(order); got != 0 {
		t.Fatalf("TotalItemCount = %d, want 0 for empty items", got)
	}
}

func TestItemCountAcrossOrders(t *testing.T) {
	first := testOrder("ord_1", domain.OrderStatusPending)
	second := testOrder("ord_2", domain.OrderStatusShipped)

	if got := ItemCount([]domain.Order{first, second}); got != 4 {
		t.Fatalf("ItemCount = %d, want 4", got)
	}
	if got := ItemCount(nil); got != 0 {
		t.Fatalf("ItemCount(nil) = %d", got)
	}
}

func TestAverageOrderValue(t *testing.T) {
	first := testOrder("ord_1", domain.OrderStatusDelivered)
	first.Total = 100000
	second := testOrder("ord_2", domain.OrderStatusDelivered)
	second.Total = 50001

	avg, ok := AverageOrderValue([]domain.Order{first, second})
	if !ok {
		t.Fatal("expected ok for non-empty input")
	}
	if avg != 75000.5 {
		t.Fatalf("avg = %v, want 75000.5", avg)
	}
}

func TestAverageOrderValueEmptyIsNotAvailable(t *testing.T) {
	if _, ok := AverageOrderValue(nil); ok {
		t.Fatal("expected ok=false for empty input")
	}
	if _, ok := AverageOrderValue([]domain.Order{}); ok {
		t.Fatal("expected ok=false for empty slice")
	}
}

func TestCustomerRollup(t *testing.T) {
	earlier := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 3, 18, 30, 0, 0, time.UTC)

	first := testOrder("ord_1", domain.OrderStatusDelivered)
	first.Total = 94500
	first.CreatedAt = later
	second := testOrder("ord_2", domain.OrderStatusCancelled)
	second.Total = 20000
	second.CreatedAt = earlier

	stats := CustomerRollup([]domain.Order{first, second})
	if stats.TotalOrders != 2 {
		t.Fatalf("TotalOrders = %d", stats.TotalOrders)
	}
	if stats.TotalSpent != 114500 {
		t.Fatalf("TotalSpent = %d", stats.TotalSpent)
	}
	if stats.LastOrderAt == nil || !stats.LastOrderAt.Equal(later) {
		t.Fatalf("LastOrderAt = %v, want %v", stats.LastOrderAt, later)
	}
}

func TestCustomerRollupNeverOrdered(t *testing.T) {
	stats := CustomerRollup(nil)
	if stats.TotalOrders != 0 || stats.TotalSpent != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.LastOrderAt != nil {
		t.Fatalf("LastOrderAt = %v, want nil", stats.LastOrderAt)
	}
}
