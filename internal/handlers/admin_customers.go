package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marwari-basket/api/internal/platform/auth"
	"github.com/marwari-basket/api/internal/platform/httpx"
	"github.com/marwari-basket/api/internal/services"
)

type customerStatsResponse struct {
	CustomerID  string  `json:"customerId"`
	TotalSpent  int64   `json:"totalSpent"`
	TotalOrders int     `json:"totalOrders"`
	LastOrderAt *string `json:"lastOrderAt"`
}

// AdminCustomerHandlers exposes staff endpoints for customer order insights.
type AdminCustomerHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

// NewAdminCustomerHandlers constructs admin customer handlers.
func NewAdminCustomerHandlers(authn *auth.Authenticator, orders services.OrderService) *AdminCustomerHandlers {
	return &AdminCustomerHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes registers the /admin/customers endpoints.
func (h *AdminCustomerHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}
	r.Get("/customers/{customerID}/stats", h.customerStats)
}

func (h *AdminCustomerHandlers) customerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	customerID := strings.TrimSpace(chi.URLParam(r, "customerID"))
	if customerID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "customer id is required", http.StatusBadRequest))
		return
	}

	stats, err := h.orders.CustomerStats(ctx, customerID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	response := customerStatsResponse{
		CustomerID:  customerID,
		TotalSpent:  stats.TotalSpent,
		TotalOrders: stats.TotalOrders,
	}
	if stats.LastOrderAt != nil {
		formatted := formatTime(*stats.LastOrderAt)
		response.LastOrderAt = &formatted
	}

	writeJSONResponse(w, http.StatusOK, response)
}
