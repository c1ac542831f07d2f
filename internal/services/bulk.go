package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marwari-basket/api/internal/domain"
	"github.com/marwari-basket/api/internal/platform/storage"
)

const (
	bulkActionUpdateStatus = "update_status"
	bulkActionPrint        = "print"
	bulkActionExport       = "export"

	exportArtifactPrefix = "exports"
	printArtifactPrefix  = "print"
)

var (
	// ErrNothingSelected rejects bulk dispatch over an empty selection.
	ErrNothingSelected = errors.New("bulk: nothing selected")

	errArtifactStoreMissing = errors.New("bulk: artifact store not configured")
)

// BulkAction is the closed set of operations the dispatcher can run over a
// selection.
type BulkAction interface {
	kind() string
}

// BulkStatusUpdate moves every selected order to Target.
type BulkStatusUpdate struct {
	Target domain.OrderStatus
}

// BulkPrint renders a packing manifest for the selected orders.
type BulkPrint struct{}

// BulkExport renders a CSV export of the selected orders.
type BulkExport struct{}

func (BulkStatusUpdate) kind() string { return bulkActionUpdateStatus }
func (BulkPrint) kind() string        { return bulkActionPrint }
func (BulkExport) kind() string       { return bulkActionExport }

// BulkOutcome records the result of one order within a bulk dispatch.
type BulkOutcome struct {
	OrderID string
	Err     error
}

// BulkResult reports what a dispatch did. Artifact is set for print and
// export actions; FailedIDs lists the orders that could not be processed.
type BulkResult struct {
	Action    string
	Outcomes  []BulkOutcome
	FailedIDs []string
	Artifact  *storage.ArtifactRef
}

// ArtifactStore persists rendered bulk artifacts and returns a signed
// download reference. *storage.ArtifactWriter satisfies it.
type ArtifactStore interface {
	Write(ctx context.Context, prefix, extension, contentType string, payload []byte) (storage.ArtifactRef, error)
}

// BulkDispatcherDeps bundles collaborators for the bulk dispatcher.
type BulkDispatcherDeps struct {
	Orders    OrderService
	Artifacts ArtifactStore
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

// BulkDispatcher runs a bulk action over the ids selected in a view.
type BulkDispatcher struct {
	orders    OrderService
	artifacts ArtifactStore
	logger    func(context.Context, string, map[string]any)
}

// NewBulkDispatcher validates dependencies and returns a dispatcher.
func NewBulkDispatcher(deps BulkDispatcherDeps) (*BulkDispatcher, error) {
	if deps.Orders == nil {
		return nil, errors.New("bulk dispatcher: order service is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &BulkDispatcher{
		orders:    deps.Orders,
		artifacts: deps.Artifacts,
		logger:    logger,
	}, nil
}

// Dispatch snapshots the selection and runs the action over it. The snapshot
// is taken at entry, so later selection changes do not affect the batch.
// After a status update the selection is reduced to the ids that failed. The
// batch never aborts on a per-order failure.
func (d *BulkDispatcher) Dispatch(ctx context.Context, selection *SelectionSet, action BulkAction, actorID string) (BulkResult, error) {
	if selection == nil || selection.Len() == 0 {
		return BulkResult{}, ErrNothingSelected
	}
	if action == nil {
		return BulkResult{}, fmt.Errorf("%w: action is required", ErrOrderInvalidInput)
	}

	snapshot := selection.IDs()

	switch act := action.(type) {
	case BulkStatusUpdate:
		return d.updateStatuses(ctx, selection, snapshot, act.Target, actorID)
	case BulkPrint:
		return d.renderArtifact(ctx, snapshot, bulkActionPrint)
	case BulkExport:
		return d.renderArtifact(ctx, snapshot, bulkActionExport)
	default:
		return BulkResult{}, fmt.Errorf("%w: unknown bulk action %q", ErrOrderInvalidInput, action.kind())
	}
}

func (d *BulkDispatcher) updateStatuses(ctx context.Context, selection *SelectionSet, snapshot []string, target domain.OrderStatus, actorID string) (BulkResult, error) {
	if !domain.ValidOrderStatus(target) {
		return BulkResult{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, target)
	}

	result := BulkResult{Action: bulkActionUpdateStatus, Outcomes: make([]BulkOutcome, 0, len(snapshot))}
	for _, orderID := range snapshot {
		_, err := d.orders.SetStatus(ctx, SetOrderStatusCommand{
			OrderID: orderID,
			Status:  target,
			ActorID: actorID,
		})
		result.Outcomes = append(result.Outcomes, BulkOutcome{OrderID: orderID, Err: err})
		if err != nil {
			result.FailedIDs = append(result.FailedIDs, orderID)
			d.logger(ctx, "bulk.status.failed", map[string]any{
				"order":  orderID,
				"target": string(target),
				"error":  err.Error(),
			})
		}
	}

	selection.Retain(result.FailedIDs)
	return result, nil
}

func (d *BulkDispatcher) renderArtifact(ctx context.Context, snapshot []string, action string) (BulkResult, error) {
	if d.artifacts == nil {
		return BulkResult{}, errArtifactStoreMissing
	}

	result := BulkResult{Action: action, Outcomes: make([]BulkOutcome, 0, len(snapshot))}
	orders := make([]domain.Order, 0, len(snapshot))
	for _, orderID := range snapshot {
		order, err := d.orders.GetOrder(ctx, orderID, OrderReadOptions{})
		result.Outcomes = append(result.Outcomes, BulkOutcome{OrderID: orderID, Err: err})
		if err != nil {
			result.FailedIDs = append(result.FailedIDs, orderID)
			continue
		}
		orders = append(orders, order)
	}
	if len(orders) == 0 {
		return BulkResult{}, fmt.Errorf("%w: no selected orders could be resolved", ErrOrderNotFound)
	}

	var (
		ref storage.ArtifactRef
		err error
	)
	switch action {
	case bulkActionExport:
		ref, err = d.artifacts.Write(ctx, exportArtifactPrefix, "csv", "text/csv", renderOrdersCSV(orders))
	case bulkActionPrint:
		ref, err = d.artifacts.Write(ctx, printArtifactPrefix, "csv", "text/csv", renderPrintManifest(orders))
	}
	if err != nil {
		return BulkResult{}, fmt.Errorf("bulk: store %s artifact: %w", action, err)
	}

	result.Artifact = &ref
	return result, nil
}

func renderOrdersCSV(orders []domain.Order) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"order_number", "customer_name", "customer_email", "status", "payment_status", "total_minor", "placed_at"})
	for _, order := range orders {
		_ = w.Write([]string{
			order.OrderNumber,
			order.Customer.Name,
			order.Customer.Email,
			string(order.Status),
			string(order.PaymentStatus),
			strconv.FormatInt(order.Total, 10),
			order.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func renderPrintManifest(orders []domain.Order) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"order_number", "customer_name", "items", "street", "city", "state", "zip", "country"})
	for _, order := range orders {
		_ = w.Write([]string{
			order.OrderNumber,
			order.Customer.Name,
			strconv.Itoa(TotalItemCount(order)),
			order.ShippingAddress.Street,
			order.ShippingAddress.City,
			order.ShippingAddress.State,
			order.ShippingAddress.ZipCode,
			order.ShippingAddress.Country,
		})
	}
	w.Flush()
	return buf.Bytes()
}
