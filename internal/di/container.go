package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/marwari-basket/api/internal/platform/config"
	"github.com/marwari-basket/api/internal/platform/pagination"
	"github.com/marwari-basket/api/internal/repositories"
	"github.com/marwari-basket/api/internal/services"
)

// Dependencies carries the externally constructed collaborators the container
// wires into services. Clients (Firestore, Pub/Sub, Storage) are dialled by
// the caller so their lifecycle stays at the process edge.
type Dependencies struct {
	Config    config.Config
	Orders    repositories.OrderRepository
	Health    repositories.HealthRepository
	Events    services.OrderEventPublisher
	Artifacts services.ArtifactStore
	Logger    *zap.Logger
}

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Orders services.OrderService
	Bulk   *services.BulkDispatcher
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config   config.Config
	Health   repositories.HealthRepository
	Services Services
}

// NewContainer assembles the service graph from the provided dependencies.
func NewContainer(deps Dependencies) (*Container, error) {
	if deps.Orders == nil {
		return nil, errors.New("di: order repository is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logFn := zapEventLogger(logger.Named("services"))

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders: deps.Orders,
		Events: deps.Events,
		Logger: logFn,
	})
	if err != nil {
		return nil, fmt.Errorf("di: build order service: %w", err)
	}

	dispatcher, err := services.NewBulkDispatcher(services.BulkDispatcherDeps{
		Orders:    orderService,
		Artifacts: deps.Artifacts,
		Logger:    logFn,
	})
	if err != nil {
		return nil, fmt.Errorf("di: build bulk dispatcher: %w", err)
	}

	return &Container{
		Config: deps.Config,
		Health: deps.Health,
		Services: Services{
			Orders: orderService,
			Bulk:   dispatcher,
		},
	}, nil
}

// PaginationOptions derives handler pagination settings from configuration.
func (c *Container) PaginationOptions() pagination.Options {
	return pagination.Options{
		DefaultPageSize: c.Config.Orders.DefaultPageSize,
		MaxPageSize:     c.Config.Orders.MaxPageSize,
	}
}

func zapEventLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Info(event, zFields...)
	}
}
