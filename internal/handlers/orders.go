package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marwari-basket/api/internal/domain"
	"github.com/marwari-basket/api/internal/platform/auth"
	"github.com/marwari-basket/api/internal/platform/httpx"
	"github.com/marwari-basket/api/internal/platform/pagination"
	"github.com/marwari-basket/api/internal/services"
)

// OrderHandlers exposes order read endpoints for authenticated customers.
type OrderHandlers struct {
	authn      *auth.Authenticator
	orders     services.OrderService
	pagination pagination.Options
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService, pageOpts pagination.Options) *OrderHandlers {
	return &OrderHandlers{
		authn:      authn,
		orders:     orders,
		pagination: pageOpts,
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	query, err := parseOrderQuery(r, h.pagination)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.orders.ListCustomerOrders(ctx, identity.UID, query)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildOrderListResponse(page))
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID, services.OrderReadOptions{IncludeHistory: true})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	// Orders belonging to other customers are indistinguishable from missing.
	// UIDs are case-sensitive, so the comparison must be exact.
	if strings.TrimSpace(order.UserID) != strings.TrimSpace(identity.UID) {
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

// parseOrderQuery reads the shared list parameters (q, status, date, tz,
// page, page_size) used by both customer and admin listings.
func parseOrderQuery(r *http.Request, pageOpts pagination.Options) (services.OrderQuery, error) {
	values := r.URL.Query()

	query := services.OrderQuery{
		Search:   strings.TrimSpace(values.Get("q")),
		PlacedOn: strings.TrimSpace(values.Get("date")),
	}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status := domain.OrderStatus(strings.ToLower(raw))
		if !domain.ValidOrderStatus(status) {
			return services.OrderQuery{}, &queryParamError{param: "status", value: raw}
		}
		query.Status = status
	}

	loc, err := parseViewerLocation(values.Get("tz"))
	if err != nil {
		return services.OrderQuery{}, &queryParamError{param: "tz", value: values.Get("tz")}
	}
	query.Location = loc

	params, err := pagination.FromRequest(r, pageOpts)
	if err != nil {
		return services.OrderQuery{}, err
	}
	query.Page = params.Page
	query.PageSize = params.PageSize

	return query, nil
}

type queryParamError struct {
	param string
	value string
}

func (e *queryParamError) Error() string {
	return e.param + " has unsupported value " + strings.TrimSpace(e.value)
}
