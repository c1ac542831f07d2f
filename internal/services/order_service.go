package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/marwari-basket/api/internal/domain"
	"github.com/marwari-basket/api/internal/repositories"
)

const (
	orderEventCreated       = "order.created"
	orderEventStatusChanged = "order.status.changed"

	orderIDPrefix = "ord_"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderConflict indicates concurrent modification or duplicates.
	ErrOrderConflict = errors.New("order: conflict")
	// ErrOrderUnavailable indicates the order store could not be reached.
	ErrOrderUnavailable = errors.New("order: store unavailable")
)

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Clock       func() time.Time
	IDGenerator func() string
	Events      OrderEventPublisher
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders repositories.OrderRepository
	clock  func() time.Time
	newID  func() string
	events OrderEventPublisher
	logger func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders: deps.Orders,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		events: deps.Events,
		logger: logger,
	}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error) {
	order := cmd.Order
	now := s.now()

	if strings.TrimSpace(order.ID) == "" {
		order.ID = orderIDPrefix + s.newID()
	}
	if strings.TrimSpace(order.OrderNumber) == "" {
		order.OrderNumber = s.generateOrderNumber(now)
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	if len(order.StatusHistory) == 0 {
		order.StatusHistory = []domain.StatusChange{{
			Status:    order.Status,
			ChangedAt: now,
			ActorID:   strings.TrimSpace(cmd.ActorID),
		}}
	}

	if err := order.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, OrderEvent{
		Type:          orderEventCreated,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CurrentStatus: string(order.Status),
		ActorID:       strings.TrimSpace(cmd.ActorID),
		OccurredAt:    now,
	})

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string, opts OrderReadOptions) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	if opts.IncludeHistory {
		history, err := s.orders.StatusHistory(ctx, orderID)
		if err != nil {
			return domain.Order{}, s.mapRepositoryError(err)
		}
		order.StatusHistory = history
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, query OrderQuery) (domain.Page[domain.Order], error) {
	return s.list(ctx, "", query)
}

func (s *orderService) ListCustomerOrders(ctx context.Context, customerID string, query OrderQuery) (domain.Page[domain.Order], error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Page[domain.Order]{}, fmt.Errorf("%w: customer id is required", ErrOrderInvalidInput)
	}
	return s.list(ctx, customerID, query)
}

func (s *orderService) list(ctx context.Context, customerID string, query OrderQuery) (domain.Page[domain.Order], error) {
	if query.Status != "" && !domain.ValidOrderStatus(query.Status) {
		return domain.Page[domain.Order]{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, query.Status)
	}

	filter := repositories.OrderListFilter{CustomerID: customerID}
	if query.Status != "" {
		filter.Statuses = []domain.OrderStatus{query.Status}
	}
	if query.PlacedOn != "" {
		from, to, err := calendarDayBounds(query.PlacedOn, query.Location)
		if err != nil {
			return domain.Page[domain.Order]{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
		}
		filter.PlacedFrom = from
		filter.PlacedTo = to
	}

	var (
		orders []domain.Order
		err    error
	)
	if customerID != "" {
		orders, err = s.orders.ListByCustomer(ctx, customerID, filter)
	} else {
		orders, err = s.orders.List(ctx, filter)
	}
	if err != nil {
		return domain.Page[domain.Order]{}, s.mapRepositoryError(err)
	}

	page, err := ApplyOrderQuery(orders, query)
	if err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
	}
	return page, nil
}

func (s *orderService) SetStatus(ctx context.Context, cmd SetOrderStatusCommand) (domain.Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !domain.ValidOrderStatus(cmd.Status) {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Status)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	// Re-applying the current status writes nothing and emits nothing.
	if order.Status == cmd.Status {
		s.logger(ctx, "order.status.noop", map[string]any{
			"order":  order.ID,
			"status": string(order.Status),
		})
		return order, nil
	}

	actor := strings.TrimSpace(cmd.ActorID)
	now := s.now()
	prevStatus := order.Status

	updated, err := s.orders.UpdateStatus(ctx, orderID, repositories.StatusUpdate{
		Status:    cmd.Status,
		ChangedAt: now,
		ActorID:   actor,
		Note:      strings.TrimSpace(cmd.Note),
	})
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	s.publishEvent(ctx, OrderEvent{
		Type:           orderEventStatusChanged,
		OrderID:        updated.ID,
		OrderNumber:    updated.OrderNumber,
		PreviousStatus: string(prevStatus),
		CurrentStatus:  string(updated.Status),
		ActorID:        actor,
		OccurredAt:     now,
	})

	return updated, nil
}

func (s *orderService) CustomerStats(ctx context.Context, customerID string) (CustomerStats, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return CustomerStats{}, fmt.Errorf("%w: customer id is required", ErrOrderInvalidInput)
	}

	orders, err := s.orders.ListByCustomer(ctx, customerID, repositories.OrderListFilter{CustomerID: customerID})
	if err != nil {
		return CustomerStats{}, s.mapRepositoryError(err)
	}

	return CustomerRollup(orders), nil
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
		}
	}

	return err
}

func (s *orderService) generateOrderNumber(now time.Time) string {
	id := s.newID()
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return fmt.Sprintf("MB-%04d-%s", now.Year(), strings.ToUpper(id))
}

func (s *orderService) now() time.Time {
	return s.clock()
}

func (s *orderService) publishEvent(ctx context.Context, event OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":   event.Type,
			"order":  event.OrderID,
			"error":  err.Error(),
			"status": event.CurrentStatus,
		})
	}
}
