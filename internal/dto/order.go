package dto

import (
	"time"

	"github.com/Additional-Code/vendordesk/internal/entity"
	"github.com/Additional-Code/vendordesk/internal/format"
	ordersvc "github.com/Additional-Code/vendordesk/internal/service/order"
	"github.com/Additional-Code/vendordesk/internal/upstream"
)

// StatusAction is a transition offered for an order.
type StatusAction struct {
	Status string `json:"status"`
	Label  string `json:"label"`
}

// FilterOption is one entry of the status filter bar.
type FilterOption struct {
	Label  string `json:"label"`
	Token  string `json:"token"`
	Active bool   `json:"active"`
}

// OrderItemResponse is one rendered order line.
type OrderItemResponse struct {
	MenuItemID  int64  `json:"menu_item_id"`
	Name        string `json:"name,omitempty"`
	Quantity    int    `json:"quantity"`
	TotalAmount string `json:"total_amount"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID            int64               `json:"id"`
	Status        string              `json:"status"`
	StatusLabel   string              `json:"status_label"`
	OrderedAt     time.Time           `json:"ordered_at"`
	OrderedAgo    string              `json:"ordered_ago"`
	RequestedAt   time.Time           `json:"requested_at"`
	RequestedASAP bool                `json:"requested_asap"`
	TotalAmount   string              `json:"total_amount"`
	DeliveryFee   string              `json:"delivery_fee"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	Actions       []StatusAction      `json:"actions"`
}

// ModalResponse is the rendered detail modal.
type ModalResponse struct {
	OrderID int64          `json:"order_id"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
	Order   *OrderResponse `json:"order,omitempty"`
}

// DashboardResponse is the whole order page.
type DashboardResponse struct {
	Filters     []FilterOption  `json:"filters"`
	Orders      []OrderResponse `json:"orders"`
	Loading     bool            `json:"loading"`
	Error       string          `json:"error,omitempty"`
	Retryable   bool            `json:"retryable"`
	RefreshedAt *time.Time      `json:"refreshed_at,omitempty"`
	Modal       *ModalResponse  `json:"modal,omitempty"`
}

// Actions renders the transitions offered for status.
func Actions(status entity.OrderStatus) []StatusAction {
	next := entity.Actions(status)
	out := make([]StatusAction, 0, len(next))
	for _, s := range next {
		out = append(out, StatusAction{Status: string(s), Label: format.StatusLabel(string(s))})
	}
	return out
}

// Filters renders the filter bar with active marking the current token.
func Filters(active string) []FilterOption {
	out := []FilterOption{{Label: format.FilterAll, Token: "", Active: active == ""}}
	for _, s := range entity.KnownStatuses {
		out = append(out, FilterOption{
			Label:  format.StatusLabel(string(s)),
			Token:  string(s),
			Active: string(s) == active,
		})
	}
	return out
}

// NewOrder renders o relative to now.
func NewOrder(o upstream.Order, now time.Time) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		StatusLabel:   format.StatusLabel(string(o.Status)),
		OrderedAt:     o.OrderedAt,
		OrderedAgo:    format.TimeAgo(now, o.OrderedAt),
		RequestedAt:   o.RequestedAt,
		RequestedASAP: o.RequestedASAP,
		TotalAmount:   format.Money(o.TotalAmount),
		DeliveryFee:   format.Money(o.DeliveryFee),
		Actions:       Actions(o.Status),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			MenuItemID:  item.MenuItemID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			TotalAmount: format.Money(item.TotalAmount),
		})
	}
	return resp
}

// NewDashboard renders a view snapshot.
func NewDashboard(v ordersvc.View, now time.Time) DashboardResponse {
	resp := DashboardResponse{
		Filters:   Filters(v.Filter),
		Orders:    make([]OrderResponse, 0, len(v.Orders)),
		Loading:   v.Loading,
		Error:     v.Error,
		Retryable: v.Retryable,
	}
	for _, o := range v.Orders {
		resp.Orders = append(resp.Orders, NewOrder(o, now))
	}
	if !v.RefreshedAt.IsZero() {
		refreshed := v.RefreshedAt
		resp.RefreshedAt = &refreshed
	}
	if v.Modal != nil {
		resp.Modal = NewModal(*v.Modal, now)
	}
	return resp
}

// NewModal renders the detail modal.
func NewModal(m ordersvc.Modal, now time.Time) *ModalResponse {
	resp := &ModalResponse{OrderID: m.OrderID, Loading: m.Loading, Error: m.Error}
	if m.Order != nil {
		order := NewOrder(*m.Order, now)
		resp.Order = &order
	}
	return resp
}
