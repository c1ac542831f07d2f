package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/marwari-basket/api/internal/domain"
	pfirestore "github.com/marwari-basket/api/internal/platform/firestore"
	"github.com/marwari-basket/api/internal/repositories"
)

const (
	ordersCollection            = "orders"
	statusHistorySubcollection  = "statusHistory"
	defaultOrderListFetchLimit  = 1000
	maxStatusFilterDisjunctions = 10
)

// OrderRepository persists order documents with a statusHistory subcollection.
type OrderRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[orderDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository: firestore provider is required")
	}
	base := pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil)
	return &OrderRepository{provider: provider, base: base}, nil
}

// Insert stores a new order document together with its initial status history entry.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	orderID := strings.TrimSpace(order.ID)
	if orderID == "" {
		return errors.New("order repository: order id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, orderID)
	if err != nil {
		return err
	}

	doc := encodeOrderDocument(order)
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(docRef, doc); err != nil {
			return err
		}
		for _, change := range order.StatusHistory {
			entryRef := docRef.Collection(statusHistorySubcollection).NewDoc()
			if err := tx.Create(entryRef, encodeStatusChange(change)); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID fetches a single order without its status history.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOrderDocument(doc.ID, doc.Data), nil
}

// List returns orders matching the indexed filter ordered oldest first, so the
// service layer sees records in placement order.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}
	return r.list(ctx, "", filter)
}

// ListByCustomer returns a single customer's orders matching the filter.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, errors.New("order repository: customer id is required")
	}
	return r.list(ctx, customerID, filter)
}

func (r *OrderRepository) list(ctx context.Context, customerID string, filter repositories.OrderListFilter) ([]domain.Order, error) {
	statuses := normaliseStatusFilter(filter.Statuses)
	if len(statuses) > maxStatusFilterDisjunctions {
		return nil, fmt.Errorf("order repository: at most %d status filters are supported", maxStatusFilterDisjunctions)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultOrderListFetchLimit
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if customerID != "" {
			query = query.Where("userId", "==", customerID)
		} else if override := strings.TrimSpace(filter.CustomerID); override != "" {
			query = query.Where("userId", "==", override)
		}
		if len(statuses) == 1 {
			query = query.Where("status", "==", statuses[0])
		} else if len(statuses) > 1 {
			query = query.Where("status", "in", statuses)
		}
		if !filter.PlacedFrom.IsZero() {
			query = query.Where("createdAt", ">=", filter.PlacedFrom.UTC())
		}
		if !filter.PlacedTo.IsZero() {
			query = query.Where("createdAt", "<", filter.PlacedTo.UTC())
		}
		return query.OrderBy("createdAt", firestore.Asc).Limit(limit)
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, decodeOrderDocument(doc.ID, doc.Data))
	}
	return orders, nil
}

// UpdateStatus transactionally sets the order status and appends the change to
// the statusHistory subcollection. The read and both writes share one
// transaction, so a failed write leaves the stored order untouched.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, update repositories.StatusUpdate) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	changedAt := update.ChangedAt.UTC()
	var updated domain.Order

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		var doc orderDocument
		if err := snap.DataTo(&doc); err != nil {
			return err
		}

		doc.Status = string(update.Status)
		doc.UpdatedAt = changedAt

		if err := tx.Set(docRef, doc); err != nil {
			return err
		}

		entryRef := docRef.Collection(statusHistorySubcollection).NewDoc()
		if err := tx.Create(entryRef, encodeStatusChange(domain.StatusChange{
			Status:    update.Status,
			ChangedAt: changedAt,
			ActorID:   update.ActorID,
			Note:      update.Note,
		})); err != nil {
			return err
		}

		updated = decodeOrderDocument(snap.Ref.ID, doc)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// StatusHistory returns the append-only status change log, oldest first.
func (r *OrderRepository) StatusHistory(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, errors.New("order repository: order id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, orderID)
	if err != nil {
		return nil, err
	}

	iter := docRef.Collection(statusHistorySubcollection).
		OrderBy("changedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var changes []domain.StatusChange
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("orders.status_history", err)
		}
		var doc statusChangeDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("order repository: decode status change %s: %w", snap.Ref.ID, err)
		}
		changes = append(changes, decodeStatusChange(doc))
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].ChangedAt.Before(changes[j].ChangedAt)
	})
	return changes, nil
}

func normaliseStatusFilter(statuses []domain.OrderStatus) []string {
	if len(statuses) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(statuses))
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		value := strings.TrimSpace(string(status))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

type orderDocument struct {
	OrderNumber     string                  `firestore:"orderNumber"`
	UserID          string                  `firestore:"userId"`
	Status          string                  `firestore:"status"`
	Items           []lineItemDocument      `firestore:"items"`
	Customer        customerDocument        `firestore:"customer"`
	ShippingAddress shippingAddressDocument `firestore:"shippingAddress"`
	PaymentMethod   string                  `firestore:"paymentMethod"`
	PaymentStatus   string                  `firestore:"paymentStatus"`
	Subtotal        int64                   `firestore:"subtotal"`
	ShippingCost    int64                   `firestore:"shippingCost"`
	Tax             int64                   `firestore:"tax"`
	Total           int64                   `firestore:"total"`
	CreatedAt       time.Time               `firestore:"createdAt"`
	UpdatedAt       time.Time               `firestore:"updatedAt"`
}

type lineItemDocument struct {
	ProductRef string  `firestore:"productRef"`
	Name       string  `firestore:"name"`
	UnitPrice  int64   `firestore:"unitPrice"`
	Quantity   int     `firestore:"quantity"`
	ImageRef   *string `firestore:"imageRef,omitempty"`
}

type customerDocument struct {
	Name  string `firestore:"name"`
	Email string `firestore:"email"`
	Phone string `firestore:"phone"`
}

type shippingAddressDocument struct {
	Street  string `firestore:"street"`
	City    string `firestore:"city"`
	State   string `firestore:"state"`
	ZipCode string `firestore:"zipCode"`
	Country string `firestore:"country"`
	Phone   string `firestore:"phone"`
}

type statusChangeDocument struct {
	Status    string    `firestore:"status"`
	ChangedAt time.Time `firestore:"changedAt"`
	ActorID   string    `firestore:"actorId"`
	Note      string    `firestore:"note,omitempty"`
}

func encodeOrderDocument(order domain.Order) orderDocument {
	items := make([]lineItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemDocument{
			ProductRef: strings.TrimSpace(item.ProductRef),
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			ImageRef:   item.ImageRef,
		})
	}
	return orderDocument{
		OrderNumber: strings.TrimSpace(order.OrderNumber),
		UserID:      strings.TrimSpace(order.UserID),
		Status:      string(order.Status),
		Items:       items,
		Customer: customerDocument{
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		},
		ShippingAddress: shippingAddressDocument{
			Street:  order.ShippingAddress.Street,
			City:    order.ShippingAddress.City,
			State:   order.ShippingAddress.State,
			ZipCode: order.ShippingAddress.ZipCode,
			Country: order.ShippingAddress.Country,
			Phone:   order.ShippingAddress.Phone,
		},
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: string(order.PaymentStatus),
		Subtotal:      order.Subtotal,
		ShippingCost:  order.ShippingCost,
		Tax:           order.Tax,
		Total:         order.Total,
		CreatedAt:     order.CreatedAt.UTC(),
		UpdatedAt:     order.UpdatedAt.UTC(),
	}
}

func decodeOrderDocument(id string, doc orderDocument) domain.Order {
	items := make([]domain.LineItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.LineItem{
			ProductRef: item.ProductRef,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			ImageRef:   item.ImageRef,
		})
	}
	return domain.Order{
		ID:          id,
		OrderNumber: doc.OrderNumber,
		UserID:      doc.UserID,
		Status:      domain.OrderStatus(doc.Status),
		Items:       items,
		Customer: domain.CustomerSnapshot{
			Name:  doc.Customer.Name,
			Email: doc.Customer.Email,
			Phone: doc.Customer.Phone,
		},
		ShippingAddress: domain.ShippingAddress{
			Street:  doc.ShippingAddress.Street,
			City:    doc.ShippingAddress.City,
			State:   doc.ShippingAddress.State,
			ZipCode: doc.ShippingAddress.ZipCode,
			Country: doc.ShippingAddress.Country,
			Phone:   doc.ShippingAddress.Phone,
		},
		PaymentMethod: doc.PaymentMethod,
		PaymentStatus: domain.PaymentStatus(doc.PaymentStatus),
		Subtotal:      doc.Subtotal,
		ShippingCost:  doc.ShippingCost,
		Tax:           doc.Tax,
		Total:         doc.Total,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func encodeStatusChange(change domain.StatusChange) statusChangeDocument {
	return statusChangeDocument{
		Status:    string(change.Status),
		ChangedAt: change.ChangedAt.UTC(),
		ActorID:   strings.TrimSpace(change.ActorID),
		Note:      change.Note,
	}
}

func decodeStatusChange(doc statusChangeDocument) domain.StatusChange {
	return domain.StatusChange{
		Status:    domain.OrderStatus(doc.Status),
		ChangedAt: doc.ChangedAt,
		ActorID:   doc.ActorID,
		Note:      doc.Note,
	}
}
