package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"

	"github.com/marwari-basket/api/internal/domain"
	"github.com/marwari-basket/api/internal/platform/storage"
)

type stubOrderService struct {
	setStatusFn func(context.Context, SetOrderStatusCommand) (domain.Order, error)
	getFn       func(context.Context, string, OrderReadOptions) (domain.Order, error)
}

func (s *stubOrderService) CreateOrder(context.Context, CreateOrderCommand) (domain.Order, error) {
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string, opts OrderReadOptions) (domain.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, orderID, opts)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) ListOrders(context.Context, OrderQuery) (domain.Page[domain.Order], error) {
	return domain.Page[domain.Order]{}, errors.New("not implemented")
}

func (s *stubOrderService) ListCustomerOrders(context.Context, string, OrderQuery) (domain.Page[domain.Order], error) {
	return domain.Page[domain.Order]{}, errors.New("not implemented")
}

func (s *stubOrderService) SetStatus(ctx context.Context, cmd SetOrderStatusCommand) (domain.Order, error) {
	if s.setStatusFn != nil {
		return s.setStatusFn(ctx, cmd)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderService) CustomerStats(context.Context, string) (CustomerStats, error) {
	return CustomerStats{}, errors.New("not implemented")
}

type stubArtifactStore struct {
	writeFn  func(context.Context, string, string, string, []byte) (storage.ArtifactRef, error)
	prefix   string
	payload  []byte
	mimeType string
}

func (s *stubArtifactStore) Write(ctx context.Context, prefix, extension, contentType string, payload []byte) (storage.ArtifactRef, error) {
	s.prefix = prefix
	s.payload = payload
	s.mimeType = contentType
	if s.writeFn != nil {
		return s.writeFn(ctx, prefix, extension, contentType, payload)
	}
	return storage.ArtifactRef{Bucket: "exports", Object: prefix + "/test." + extension, URL: "https://signed.example/" + prefix}, nil
}

func TestDispatchRejectsEmptySelection(t *testing.T) {
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: &stubOrderService{}})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	_, err = dispatcher.Dispatch(context.Background(), NewSelectionSet(), BulkStatusUpdate{Target: domain.OrderStatusShipped}, "staff_1")
	if !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("err = %v, want ErrNothingSelected", err)
	}
}

func TestDispatchStatusUpdateReportsPerOrderOutcomes(t *testing.T) {
	svc := &stubOrderService{
		setStatusFn: func(_ context.Context, cmd SetOrderStatusCommand) (domain.Order, error) {
			if cmd.OrderID == "ord_2" {
				return domain.Order{}, fmt.Errorf("%w: gone", ErrOrderNotFound)
			}
			return testOrder(cmd.OrderID, cmd.Status), nil
		},
	}
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: svc})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_2", "ord_3"})

	result, err := dispatcher.Dispatch(context.Background(), sel, BulkStatusUpdate{Target: domain.OrderStatusShipped}, "staff_1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Action != "update_status" {
		t.Fatalf("action = %q", result.Action)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("outcomes = %d", len(result.Outcomes))
	}
	if result.Outcomes[0].Err != nil || result.Outcomes[2].Err != nil {
		t.Fatalf("unexpected failures: %+v", result.Outcomes)
	}
	if !errors.Is(result.Outcomes[1].Err, ErrOrderNotFound) {
		t.Fatalf("ord_2 err = %v", result.Outcomes[1].Err)
	}
	if !equalIDs(result.FailedIDs, []string{"ord_2"}) {
		t.Fatalf("failed = %v", result.FailedIDs)
	}
	if !equalIDs(sel.IDs(), []string{"ord_2"}) {
		t.Fatalf("selection after dispatch = %v", sel.IDs())
	}
}

func TestDispatchStatusUpdateClearsSelectionOnFullSuccess(t *testing.T) {
	svc := &stubOrderService{
		setStatusFn: func(_ context.Context, cmd SetOrderStatusCommand) (domain.Order, error) {
			return testOrder(cmd.OrderID, cmd.Status), nil
		},
	}
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: svc})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_2"})

	if _, err := dispatcher.Dispatch(context.Background(), sel, BulkStatusUpdate{Target: domain.OrderStatusConfirmed}, "staff_1"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if sel.Len() != 0 {
		t.Fatalf("selection = %v, want empty", sel.IDs())
	}
}

func TestDispatchStatusUpdateRejectsUnknownTarget(t *testing.T) {
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: &stubOrderService{}})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	sel := NewSelectionSet()
	sel.Select("ord_1")

	_, err = dispatcher.Dispatch(context.Background(), sel, BulkStatusUpdate{Target: "archived"}, "staff_1")
	if !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("err = %v, want ErrOrderInvalidInput", err)
	}
	if !equalIDs(sel.IDs(), []string{"ord_1"}) {
		t.Fatalf("selection should be untouched, got %v", sel.IDs())
	}
}

func TestDispatchExportRendersCSVArtifact(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(_ context.Context, orderID string, _ OrderReadOptions) (domain.Order, error) {
			return testOrder(orderID, domain.OrderStatusShipped), nil
		},
	}
	store := &stubArtifactStore{}
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: svc, Artifacts: store})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_2"})

	result, err := dispatcher.Dispatch(context.Background(), sel, BulkExport{}, "staff_1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Artifact == nil || result.Artifact.URL == "" {
		t.Fatalf("artifact = %+v", result.Artifact)
	}
	if store.prefix != "exports" || store.mimeType != "text/csv" {
		t.Fatalf("stored prefix = %q type = %q", store.prefix, store.mimeType)
	}

	rows, err := csv.NewReader(bytes.NewReader(store.payload)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus two orders", len(rows))
	}
	if rows[1][0] != "MB-2026-ord_1" || rows[1][3] != "shipped" {
		t.Fatalf("row = %v", rows[1])
	}

	// Print and export leave the selection as it was.
	if !equalIDs(sel.IDs(), []string{"ord_1", "ord_2"}) {
		t.Fatalf("selection = %v", sel.IDs())
	}
}

func TestDispatchExportSnapshotsSelection(t *testing.T) {
	var exported []string
	svc := &stubOrderService{
		getFn: func(_ context.Context, orderID string, _ OrderReadOptions) (domain.Order, error) {
			exported = append(exported, orderID)
			return testOrder(orderID, domain.OrderStatusDelivered), nil
		},
	}

	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_2"})

	store := &stubArtifactStore{
		writeFn: func(context.Context, string, string, string, []byte) (storage.ArtifactRef, error) {
			// Simulate the view mutating the selection mid-dispatch.
			sel.Toggle("ord_3")
			return storage.ArtifactRef{Bucket: "exports", Object: "exports/x.csv"}, nil
		},
	}
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: svc, Artifacts: store})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	if _, err := dispatcher.Dispatch(context.Background(), sel, BulkExport{}, "staff_1"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !equalIDs(exported, []string{"ord_1", "ord_2"}) {
		t.Fatalf("exported = %v", exported)
	}
}

func TestDispatchPrintUsesManifestColumns(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(_ context.Context, orderID string, _ OrderReadOptions) (domain.Order, error) {
			order := testOrder(orderID, domain.OrderStatusProcessing)
			order.ShippingAddress = domain.ShippingAddress{
				Street: "12 Clock Tower Rd", City: "Jodhpur", State: "RJ", ZipCode: "342001", Country: "IN",
			}
			return order, nil
		},
	}
	store := &stubArtifactStore{}
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: svc, Artifacts: store})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	sel := NewSelectionSet()
	sel.Select("ord_1")

	result, err := dispatcher.Dispatch(context.Background(), sel, BulkPrint{}, "staff_1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Action != "print" || store.prefix != "print" {
		t.Fatalf("action = %q prefix = %q", result.Action, store.prefix)
	}

	rows, err := csv.NewReader(bytes.NewReader(store.payload)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if rows[1][2] != "2" || rows[1][4] != "Jodhpur" {
		t.Fatalf("manifest row = %v", rows[1])
	}
}

func TestDispatchExportReportsStaleIDs(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(_ context.Context, orderID string, _ OrderReadOptions) (domain.Order, error) {
			if orderID == "ord_gone" {
				return domain.Order{}, fmt.Errorf("%w: gone", ErrOrderNotFound)
			}
			return testOrder(orderID, domain.OrderStatusShipped), nil
		},
	}
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: svc, Artifacts: &stubArtifactStore{}})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_gone"})

	result, err := dispatcher.Dispatch(context.Background(), sel, BulkExport{}, "staff_1")
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !equalIDs(result.FailedIDs, []string{"ord_gone"}) {
		t.Fatalf("failed = %v", result.FailedIDs)
	}
	if result.Artifact == nil {
		t.Fatal("artifact should still be produced for resolvable orders")
	}
}

func TestDispatchExportAllStaleFails(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(context.Context, string, OrderReadOptions) (domain.Order, error) {
			return domain.Order{}, fmt.Errorf("%w: gone", ErrOrderNotFound)
		},
	}
	dispatcher, err := NewBulkDispatcher(BulkDispatcherDeps{Orders: svc, Artifacts: &stubArtifactStore{}})
	if err != nil {
		t.Fatalf("NewBulkDispatcher: %v", err)
	}

	sel := NewSelectionSet()
	sel.Select("ord_gone")

	_, err = dispatcher.Dispatch(context.Background(), sel, BulkExport{}, "staff_1")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}
