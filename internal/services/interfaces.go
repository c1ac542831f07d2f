package services

import (
	"context"
	"time"

	"github.com/marwari-basket/api/internal/domain"
	"github.com/marwari-basket/api/internal/repositories"
)

// OrderService encapsulates order read flows, status changes and customer
// aggregation.
type OrderService interface {
	// CreateOrder validates and persists a new order document.
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error)
	// GetOrder loads a single order, optionally hydrating its status history.
	GetOrder(ctx context.Context, orderID string, opts OrderReadOptions) (domain.Order, error)
	// ListOrders applies the given query over all orders.
	ListOrders(ctx context.Context, query OrderQuery) (domain.Page[domain.Order], error)
	// ListCustomerOrders applies the given query scoped to one customer.
	ListCustomerOrders(ctx context.Context, customerID string, query OrderQuery) (domain.Page[domain.Order], error)
	// SetStatus applies a status change. Re-applying the current status is a
	// no-op success.
	SetStatus(ctx context.Context, cmd SetOrderStatusCommand) (domain.Order, error)
	// CustomerStats aggregates the full order history of one customer.
	CustomerStats(ctx context.Context, customerID string) (CustomerStats, error)
}

// OrderReadOptions toggles optional projections on single-order reads.
type OrderReadOptions struct {
	IncludeHistory bool
}

// CreateOrderCommand carries a fully formed order to persist. The service
// assigns ID, OrderNumber and timestamps when they are blank.
type CreateOrderCommand struct {
	Order   domain.Order
	ActorID string
}

// SetOrderStatusCommand mutates the status of a single order.
type SetOrderStatusCommand struct {
	OrderID string
	Status  domain.OrderStatus
	ActorID string
	Note    string
}

// OrderQuery narrows and pages order listings. Search, Status and PlacedOn
// combine with AND; zero values disable the corresponding filter.
type OrderQuery struct {
	// Search matches case-insensitively against order number, customer name
	// and customer email.
	Search string
	// Status restricts to one order status when non-empty.
	Status domain.OrderStatus
	// PlacedOn restricts to orders placed on one calendar day ("2006-01-02")
	// interpreted in Location.
	PlacedOn string
	// Location is the viewer's timezone for PlacedOn. Nil means server-local.
	Location *time.Location
	Page     int
	PageSize int
}

// OrderEventPublisher publishes order domain events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// OrderEvent captures metadata for emitted order domain events.
type OrderEvent struct {
	Type           string
	OrderID        string
	OrderNumber    string
	PreviousStatus string
	CurrentStatus  string
	ActorID        string
	OccurredAt     time.Time
}

// OrderListFilter aliases the repository filter for callers wiring services.
type OrderListFilter = repositories.OrderListFilter
