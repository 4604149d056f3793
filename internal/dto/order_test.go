package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/vendordesk/internal/entity"
	ordersvc "github.com/Additional-Code/vendordesk/internal/service/order"
	"github.com/Additional-Code/vendordesk/internal/upstream"
)

func TestNewOrderRendersLabelsAndMoney(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := NewOrder(upstream.Order{
		ID:          42,
		Status:      entity.StatusInProgress,
		OrderedAt:   now.Add(-90 * time.Second),
		TotalAmount: decimal.RequireFromString("1500"),
		DeliveryFee: decimal.RequireFromString("2.5"),
		Items:       []upstream.OrderItem{{MenuItemID: 3, Name: "Chips", Quantity: 2, TotalAmount: decimal.NewFromInt(700)}},
	}, now)

	if resp.StatusLabel != "In Progress" || resp.OrderedAgo != "1 minute ago" {
		t.Fatalf("label=%q ago=%q", resp.StatusLabel, resp.OrderedAgo)
	}
	if resp.TotalAmount != "1500.00" || resp.DeliveryFee != "2.50" || resp.Items[0].TotalAmount != "700.00" {
		t.Fatalf("amounts = %+v", resp)
	}
	if len(resp.Actions) != 2 || resp.Actions[0].Label != "Completed" || resp.Actions[1].Status != "cancelled" {
		t.Fatalf("actions = %+v", resp.Actions)
	}
}

func TestFiltersMarkActive(t *testing.T) {
	filters := Filters("in_progress")
	if len(filters) != 6 || filters[0].Label != "All" {
		t.Fatalf("filters = %+v", filters)
	}
	for _, f := range filters {
		if f.Active != (f.Token == "in_progress") {
			t.Fatalf("filter %+v has wrong active flag", f)
		}
	}
}

func TestNewDashboardKeepsBannerAndModal(t *testing.T) {
	view := ordersvc.View{
		Error:     "Failed to load orders: timeout",
		Retryable: true,
		Modal:     &ordersvc.Modal{OrderID: 7, Loading: true},
	}
	resp := NewDashboard(view, time.Now())
	if resp.Error == "" || !resp.Retryable || resp.RefreshedAt != nil {
		t.Fatalf("dashboard = %+v", resp)
	}
	if resp.Modal == nil || resp.Modal.OrderID != 7 || resp.Modal.Order != nil {
		t.Fatalf("modal = %+v", resp.Modal)
	}
	if resp.Orders == nil {
		t.Fatal("orders should render as an empty list")
	}
}
