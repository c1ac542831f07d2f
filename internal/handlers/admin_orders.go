package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/marwari-basket/api/internal/domain"
	"github.com/marwari-basket/api/internal/platform/auth"
	"github.com/marwari-basket/api/internal/platform/httpx"
	"github.com/marwari-basket/api/internal/platform/pagination"
	"github.com/marwari-basket/api/internal/services"
)

const maxAdminOrderBodySize = 64 * 1024

type setStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type bulkActionRequest struct {
	Action       string   `json:"action"`
	TargetStatus string   `json:"target_status"`
	OrderIDs     []string `json:"order_ids"`
}

type bulkOutcomePayload struct {
	OrderID string `json:"orderId"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

type bulkActionResponse struct {
	Action   string               `json:"action"`
	Results  []bulkOutcomePayload `json:"results"`
	Failed   []string             `json:"failed,omitempty"`
	Artifact *artifactPayload     `json:"artifact,omitempty"`
}

type artifactPayload struct {
	Bucket    string `json:"bucket"`
	Object    string `json:"object"`
	URL       string `json:"url,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// AdminOrderHandlers exposes staff endpoints for managing orders in bulk.
type AdminOrderHandlers struct {
	authn      *auth.Authenticator
	orders     services.OrderService
	dispatcher *services.BulkDispatcher
	pagination pagination.Options
	sanitizer  *bluemonday.Policy
}

// NewAdminOrderHandlers constructs admin order handlers.
func NewAdminOrderHandlers(authn *auth.Authenticator, orders services.OrderService, dispatcher *services.BulkDispatcher, pageOpts pagination.Options) *AdminOrderHandlers {
	return &AdminOrderHandlers{
		authn:      authn,
		orders:     orders,
		dispatcher: dispatcher,
		pagination: pageOpts,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// Routes registers the /admin/orders endpoints.
func (h *AdminOrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderID}", h.getOrder)
	r.Post("/orders/{orderID}:status", h.setStatus)
	r.Post("/orders:bulk", h.bulkAction)
}

func (h *AdminOrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	query, err := parseOrderQuery(r, h.pagination)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.orders.ListOrders(ctx, query)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildOrderListResponse(page))
}

func (h *AdminOrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
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

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *AdminOrderHandlers) setStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxAdminOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req setStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
		return
	}

	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !domain.ValidOrderStatus(status) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status must be a valid order status", http.StatusBadRequest))
		return
	}

	order, err := h.orders.SetStatus(ctx, services.SetOrderStatusCommand{
		OrderID: orderID,
		Status:  status,
		ActorID: actorID(ctx),
		Note:    h.sanitizeNote(req.Note),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *AdminOrderHandlers) bulkAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.dispatcher == nil {
		httpx.WriteError(ctx, w, httpx.NewError("bulk_unavailable", "bulk dispatcher unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxAdminOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req bulkActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
		return
	}

	action, err := parseBulkAction(req)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	selection := services.NewSelectionSet()
	selection.SelectAll(trimmedIDs(req.OrderIDs))

	result, err := h.dispatcher.Dispatch(ctx, selection, action, actorID(ctx))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildBulkResponse(result))
}

func (h *AdminOrderHandlers) sanitizeNote(note string) string {
	return strings.TrimSpace(h.sanitizer.Sanitize(note))
}

func parseBulkAction(req bulkActionRequest) (services.BulkAction, error) {
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "update_status":
		target := domain.OrderStatus(strings.ToLower(strings.TrimSpace(req.TargetStatus)))
		if !domain.ValidOrderStatus(target) {
			return nil, errors.New("target_status must be a valid order status")
		}
		return services.BulkStatusUpdate{Target: target}, nil
	case "print":
		return services.BulkPrint{}, nil
	case "export":
		return services.BulkExport{}, nil
	default:
		return nil, errors.New("action must be one of update_status, print, export")
	}
}

func buildBulkResponse(result services.BulkResult) bulkActionResponse {
	outcomes := make([]bulkOutcomePayload, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		payload := bulkOutcomePayload{OrderID: outcome.OrderID, OK: outcome.Err == nil}
		if outcome.Err != nil {
			payload.Error = outcome.Err.Error()
		}
		outcomes = append(outcomes, payload)
	}

	response := bulkActionResponse{
		Action:  result.Action,
		Results: outcomes,
		Failed:  result.FailedIDs,
	}
	if result.Artifact != nil {
		response.Artifact = &artifactPayload{
			Bucket: result.Artifact.Bucket,
			Object: result.Artifact.Object,
			URL:    result.Artifact.URL,
		}
		if !result.Artifact.ExpiresAt.IsZero() {
			response.Artifact.ExpiresAt = formatTime(result.Artifact.ExpiresAt)
		}
	}
	return response
}

func trimmedIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
