package order

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vendordesk/internal/entity"
	"github.com/Additional-Code/vendordesk/internal/messaging"
	"github.com/Additional-Code/vendordesk/internal/notify"
	ordersvc "github.com/Additional-Code/vendordesk/internal/service/order"
	"github.com/Additional-Code/vendordesk/internal/session"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return nil
}

func TestPushHandlerNotifiesAndRefreshes(t *testing.T) {
	queue := notify.NewQueue(time.Minute)
	defer queue.Close()
	refresher := &countingRefresher{}
	reg := PushRegistration(zaptest.NewLogger(t), queue, refresher)

	if reg.EventType != messaging.EventPush {
		t.Fatalf("event type = %q", reg.EventType)
	}

	payload := []byte(`{"notification":{"title":"New order","body":"Order #12 is waiting","icon":"/icon.png"},"data":{"url":"/orders"}}`)
	if err := reg.Handler(context.Background(), messaging.NewEvent(messaging.EventPush, nil, payload)); err != nil {
		t.Fatalf("handler: %v", err)
	}

	notes := queue.List()
	if len(notes) != 1 || notes[0].Message != "New order: Order #12 is waiting" {
		t.Fatalf("notifications = %+v", notes)
	}
	if refresher.calls.Load() != 1 {
		t.Fatalf("refresh calls = %d", refresher.calls.Load())
	}
}

func TestPushHandlerRejectsGarbage(t *testing.T) {
	queue := notify.NewQueue(time.Minute)
	defer queue.Close()
	refresher := &countingRefresher{}
	reg := PushRegistration(zaptest.NewLogger(t), queue, refresher)

	if err := reg.Handler(context.Background(), messaging.NewEvent(messaging.EventPush, nil, []byte("{"))); err == nil {
		t.Fatal("expected decode error")
	}
	if len(queue.List()) != 0 || refresher.calls.Load() != 0 {
		t.Fatal("garbage must not change state")
	}
}

func TestStatusChangedRefreshesOwnVendorOnly(t *testing.T) {
	refresher := &countingRefresher{}
	sessions := session.Static(session.Session{VendorID: "7"})
	reg := StatusChangedRegistration(zaptest.NewLogger(t), sessions, refresher, "dash-1")

	send := func(vendorID string) {
		t.Helper()
		payload, _ := json.Marshal(ordersvc.StatusChangedEvent{OrderID: 1, VendorID: vendorID, Status: entity.StatusCompleted})
		if err := reg.Handler(context.Background(), messaging.NewEvent(ordersvc.EventStatusChanged, nil, payload)); err != nil {
			t.Fatalf("handler: %v", err)
		}
	}

	send("7")
	send("8")
	send("")

	if refresher.calls.Load() != 2 {
		t.Fatalf("refresh calls = %d, want 2", refresher.calls.Load())
	}
}

func TestStatusChangedSkipsOwnEvents(t *testing.T) {
	refresher := &countingRefresher{}
	sessions := session.Static(session.Session{VendorID: "7"})
	reg := StatusChangedRegistration(zaptest.NewLogger(t), sessions, refresher, "dash-1")

	for _, source := range []string{"dash-1", "dash-2", ""} {
		payload, _ := json.Marshal(ordersvc.StatusChangedEvent{OrderID: 1, VendorID: "7", Status: entity.StatusCompleted, Source: source})
		if err := reg.Handler(context.Background(), messaging.NewEvent(ordersvc.EventStatusChanged, nil, payload)); err != nil {
			t.Fatalf("handler(%q): %v", source, err)
		}
	}

	if refresher.calls.Load() != 2 {
		t.Fatalf("refresh calls = %d, want 2", refresher.calls.Load())
	}
}
