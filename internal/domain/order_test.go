package domain

import (
	"errors"
	"testing"
	"time"
)

func validTestOrder() Order {
	return Order{
		ID:          "ord_01HZX4",
		OrderNumber: "MB-2026-000417",
		UserID:      "user-1",
		Status:      OrderStatusConfirmed,
		Items: []LineItem{
			{ProductRef: "prod-1", Name: "Brass Diya", UnitPrice: 2000, Quantity: 2},
		},
		Customer:      CustomerSnapshot{Name: "Asha Rao", Email: "asha@example.com"},
		PaymentStatus: PaymentStatusPaid,
		Subtotal:      4000,
		ShippingCost:  300,
		Tax:           200,
		Total:         4500,
		CreatedAt:     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOrderValidateTotalsInvariant(t *testing.T) {
	order := validTestOrder()
	if err := order.Validate(); err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}

	order.Total = 4600
	if err := order.Validate(); !errors.Is(err, ErrOrderTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", err)
	}
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Order)
		wantErr error
	}{
		{
			name:    "missing id",
			mutate:  func(o *Order) { o.ID = "" },
			wantErr: ErrOrderIDMissing,
		},
		{
			name:    "unknown status",
			mutate:  func(o *Order) { o.Status = "archived" },
			wantErr: ErrOrderStatusUnknown,
		},
		{
			name: "empty items past pending",
			mutate: func(o *Order) {
				o.Items = nil
				o.Subtotal, o.ShippingCost, o.Tax, o.Total = 0, 0, 0, 0
			},
			wantErr: ErrOrderItemsEmpty,
		},
		{
			name:    "zero quantity",
			mutate:  func(o *Order) { o.Items[0].Quantity = 0 },
			wantErr: ErrOrderQuantityInvalid,
		},
		{
			name:    "negative tax",
			mutate:  func(o *Order) { o.Tax = -1 },
			wantErr: ErrOrderAmountNegative,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order := validTestOrder()
			tc.mutate(&order)
			if err := order.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestOrderValidateEmptyItemsAllowedWhilePending(t *testing.T) {
	order := validTestOrder()
	order.Status = OrderStatusPending
	order.Items = nil
	order.Subtotal, order.ShippingCost, order.Tax, order.Total = 0, 0, 0, 0
	if err := order.Validate(); err != nil {
		t.Fatalf("expected pending order without items to validate, got %v", err)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned} {
		if !status.Terminal() {
			t.Fatalf("expected %s terminal", status)
		}
	}
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped} {
		if status.Terminal() {
			t.Fatalf("expected %s non-terminal", status)
		}
	}
}
