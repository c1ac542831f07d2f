package domain

import (
	"errors"
	"fmt"
	"time"
)

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was placed but not yet acknowledged.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the order has been acknowledged by the store.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusProcessing indicates the order is being picked and packed.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled before completion.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusReturned indicates the delivered order was sent back.
	OrderStatusReturned OrderStatus = "returned"
)

// PaymentStatus enumerates settlement states tracked on an order.
type PaymentStatus string

const (
	// PaymentStatusPaid indicates payment has settled.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusUnpaid indicates payment is outstanding.
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	// PaymentStatusRefunded indicates a settled payment was returned to the customer.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:    {},
	OrderStatusConfirmed:  {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusReturned:   {},
}

var paymentStatuses = map[PaymentStatus]struct{}{
	PaymentStatusPaid:     {},
	PaymentStatusUnpaid:   {},
	PaymentStatusRefunded: {},
}

// ValidOrderStatus reports whether status is one of the enumerated order statuses.
func ValidOrderStatus(status OrderStatus) bool {
	_, ok := orderStatuses[status]
	return ok
}

// ValidPaymentStatus reports whether status is one of the enumerated payment statuses.
func ValidPaymentStatus(status PaymentStatus) bool {
	_, ok := paymentStatuses[status]
	return ok
}

// LineItem mirrors a purchased product at the time of checkout.
type LineItem struct {
	ProductRef string
	Name       string
	UnitPrice  int64
	Quantity   int
	ImageRef   *string
}

// CustomerSnapshot is the customer contact captured at order-creation time.
// It is a point-in-time copy, never a live reference: later edits to the
// customer profile must not change it.
type CustomerSnapshot struct {
	Name  string
	Email string
	Phone string
}

// ShippingAddress is the destination recorded on the order.
type ShippingAddress struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
	Phone   string
}

// StatusChange is one append-only entry in an order's status history.
type StatusChange struct {
	Status    OrderStatus
	ChangedAt time.Time
	ActorID   string
	Note      string
}

// Order captures a single order and its nested snapshots. Amounts are integer
// minor currency units, so total arithmetic is exact.
type Order struct {
	ID              string
	OrderNumber     string
	UserID          string
	Status          OrderStatus
	Items           []LineItem
	Customer        CustomerSnapshot
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentStatus   PaymentStatus
	Subtotal        int64
	ShippingCost    int64
	Tax             int64
	Total           int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StatusHistory   []StatusChange
}

// Validation failures returned by Order.Validate.
var (
	ErrOrderIDMissing       = errors.New("order: id is required")
	ErrOrderItemsEmpty      = errors.New("order: items must be non-empty past pending")
	ErrOrderQuantityInvalid = errors.New("order: item quantity must be at least 1")
	ErrOrderAmountNegative  = errors.New("order: amounts must be non-negative")
	ErrOrderTotalMismatch   = errors.New("order: total must equal subtotal + shipping + tax")
	ErrOrderStatusUnknown   = errors.New("order: unknown status")
)

// Validate checks the structural invariants of the order record.
func (o Order) Validate() error {
	if o.ID == "" {
		return ErrOrderIDMissing
	}
	if !ValidOrderStatus(o.Status) {
		return fmt.Errorf("%w: %q", ErrOrderStatusUnknown, o.Status)
	}
	if o.PaymentStatus != "" && !ValidPaymentStatus(o.PaymentStatus) {
		return fmt.Errorf("order: unknown payment status %q", o.PaymentStatus)
	}
	if len(o.Items) == 0 && o.Status != OrderStatusPending {
		return ErrOrderItemsEmpty
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: %q has quantity %d", ErrOrderQuantityInvalid, item.ProductRef, item.Quantity)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: %q has unit price %d", ErrOrderAmountNegative, item.ProductRef, item.UnitPrice)
		}
	}
	if o.Subtotal < 0 || o.ShippingCost < 0 || o.Tax < 0 || o.Total < 0 {
		return ErrOrderAmountNegative
	}
	if o.Total != o.Subtotal+o.ShippingCost+o.Tax {
		return fmt.Errorf("%w: %d != %d + %d + %d", ErrOrderTotalMismatch, o.Total, o.Subtotal, o.ShippingCost, o.Tax)
	}
	return nil
}

// Terminal reports whether the status admits no further forward progress.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// Page packages an offset-paginated slice of results.
type Page[T any] struct {
	Items      []T
	TotalCount int
	TotalPages int
	Page       int
	PageSize   int
}
