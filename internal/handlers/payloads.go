package handlers

import (
	"github.com/marwari-basket/api/internal/domain"
	"github.com/marwari-basket/api/internal/services"
)

type orderListResponse struct {
	Items      []orderSummaryPayload `json:"items"`
	TotalCount int                   `json:"totalCount"`
	TotalPages int                   `json:"totalPages"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type orderSummaryPayload struct {
	ID            string `json:"id"`
	OrderNumber   string `json:"orderNumber"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	ItemCount     int    `json:"itemCount"`
	Total         int64  `json:"total"`
	PlacedAt      string `json:"placedAt"`
}

type orderPayload struct {
	ID              string                `json:"id"`
	OrderNumber     string                `json:"orderNumber"`
	UserID          string                `json:"userId"`
	Status          string                `json:"status"`
	Timeline        []timelineStepPayload `json:"timeline"`
	Items           []lineItemPayload     `json:"items"`
	Customer        customerPayload       `json:"customer"`
	ShippingAddress addressPayload        `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod,omitempty"`
	PaymentStatus   string                `json:"paymentStatus,omitempty"`
	Subtotal        int64                 `json:"subtotal"`
	ShippingCost    int64                 `json:"shippingCost"`
	Tax             int64                 `json:"tax"`
	Total           int64                 `json:"total"`
	PlacedAt        string                `json:"placedAt"`
	UpdatedAt       string                `json:"updatedAt"`
	StatusHistory   []statusChangePayload `json:"statusHistory,omitempty"`
}

type timelineStepPayload struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

type lineItemPayload struct {
	ProductRef string  `json:"productRef"`
	Name       string  `json:"name"`
	UnitPrice  int64   `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	ImageRef   *string `json:"imageRef,omitempty"`
}

type customerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type addressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

type statusChangePayload struct {
	Status    string `json:"status"`
	ChangedAt string `json:"changedAt"`
	ActorID   string `json:"actorId,omitempty"`
	Note      string `json:"note,omitempty"`
}

func buildOrderListResponse(page domain.Page[domain.Order]) orderListResponse {
	items := make([]orderSummaryPayload, 0, len(page.Items))
	for _, order := range page.Items {
		items = append(items, buildOrderSummary(order))
	}
	return orderListResponse{
		Items:      items,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}

func buildOrderSummary(order domain.Order) orderSummaryPayload {
	return orderSummaryPayload{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		CustomerName:  order.Customer.Name,
		CustomerEmail: order.Customer.Email,
		ItemCount:     services.TotalItemCount(order),
		Total:         order.Total,
		PlacedAt:      formatTime(order.CreatedAt),
	}
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := make([]lineItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemPayload{
			ProductRef: item.ProductRef,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			ImageRef:   item.ImageRef,
		})
	}

	steps := domain.Timeline(order.Status)
	timeline := make([]timelineStepPayload, 0, len(steps))
	for _, step := range steps {
		timeline = append(timeline, timelineStepPayload{
			Status: string(step.Status),
			State:  string(step.State),
		})
	}

	history := make([]statusChangePayload, 0, len(order.StatusHistory))
	for _, change := range order.StatusHistory {
		history = append(history, statusChangePayload{
			Status:    string(change.Status),
			ChangedAt: formatTime(change.ChangedAt),
			ActorID:   change.ActorID,
			Note:      change.Note,
		})
	}

	return orderPayload{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      string(order.Status),
		Timeline:    timeline,
		Items:       items,
		Customer: customerPayload{
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		},
		ShippingAddress: addressPayload{
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
		PlacedAt:      formatTime(order.CreatedAt),
		UpdatedAt:     formatTime(order.UpdatedAt),
		StatusHistory: history,
	}
}
