package repositories

import (
	"context"
	"time"

	"github.com/marwari-basket/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderListFilter narrows order listings at the persistence layer. Free-text
// search and calendar-day filtering happen in the service layer; the
// repository only filters on indexed fields.
type OrderListFilter struct {
	CustomerID string
	Statuses   []domain.OrderStatus
	PlacedFrom time.Time
	PlacedTo   time.Time
	Limit      int
}

// StatusUpdate captures a single status mutation applied to an order.
type StatusUpdate struct {
	Status    domain.OrderStatus
	ChangedAt time.Time
	ActorID   string
	Note      string
}

// OrderRepository persists order documents and their status history.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string, filter OrderListFilter) ([]domain.Order, error)
	// UpdateStatus transactionally sets the order status and appends the
	// change to the status history subcollection.
	UpdateStatus(ctx context.Context, orderID string, update StatusUpdate) (domain.Order, error)
	StatusHistory(ctx context.Context, orderID string) ([]domain.StatusChange, error)
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
