package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStatusLabel(t *testing.T) {
	cases := map[string]string{
		"in_progress":      "In Progress",
		"pending":          "Pending",
		"cancelled":        "Cancelled",
		"assigned":         "Assigned",
		"completed":        "Completed",
		"ready_for_pickup": "Ready For Pickup",
		"":                 "",
	}
	for in, want := range cases {
		if got := StatusLabel(in); got != want {
			t.Errorf("StatusLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterToken(t *testing.T) {
	cases := map[string]string{
		"All":         "",
		"":            "",
		"Pending":     "pending",
		"In Progress": "in_progress",
		" Cancelled ": "cancelled",
	}
	for in, want := range cases {
		if got := FilterToken(in); got != want {
			t.Errorf("FilterToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{59 * time.Second, "just now"},
		{90 * time.Second, "1 minute ago"},
		{2 * time.Minute, "2 minutes ago"},
		{3600 * time.Second, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{30 * 24 * time.Hour, "1 month ago"},
		{365 * 24 * time.Hour, "1 year ago"},
		{800 * 24 * time.Hour, "2 years ago"},
		{-time.Hour, "just now"},
	}
	for _, tc := range cases {
		if got := TimeAgo(now, now.Add(-tc.ago)); got != tc.want {
			t.Errorf("TimeAgo(-%s) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}

func TestItemFallbackLabel(t *testing.T) {
	if got := ItemFallbackLabel(17); got != "Item #17" {
		t.Fatalf("got %q", got)
	}
}

func TestMoney(t *testing.T) {
	if got := Money(decimal.RequireFromString("1500.5")); got != "1500.50" {
		t.Fatalf("Money = %q", got)
	}
}

func TestGreeting(t *testing.T) {
	if Greeting(9) != "Good Morning" || Greeting(12) != "Good Afternoon" || Greeting(18) != "Good Evening" {
		t.Fatal("unexpected greeting")
	}
}
