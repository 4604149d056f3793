package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/vendordesk/internal/config"
	"github.com/Additional-Code/vendordesk/internal/messaging"
)

func enabledConfig() config.Config {
	var cfg config.Config
	cfg.Messaging.Enabled = true
	cfg.Messaging.Workers.Enabled = true
	cfg.Messaging.Workers.Concurrency = 2
	return cfg
}

func TestEngineDispatchesByEventType(t *testing.T) {
	bus := messaging.NewMemoryClient("vendor.events", 8)
	var pushes, changes atomic.Int32

	engine := NewEngine(Params{
		Client: bus,
		Logger: zaptest.NewLogger(t),
		Config: enabledConfig(),
		Registrations: []HandlerRegistration{
			{EventType: "vendor.push", Handler: func(context.Context, messaging.Message) error { pushes.Add(1); return nil }},
			{EventType: "order.status_changed", Handler: func(context.Context, messaging.Message) error { changes.Add(1); return nil }},
			{EventType: "", Handler: func(context.Context, messaging.Message) error { t.Error("blank registration used"); return nil }},
		},
	})
	if err := engine.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx := context.Background()
	for _, eventType := range []string{"vendor.push", "order.status_changed", "vendor.push", "unknown"} {
		if err := bus.Publish(ctx, messaging.NewEvent(eventType, nil, []byte(`{}`))); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for (pushes.Load() != 2 || changes.Load() != 1) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := engine.stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if pushes.Load() != 2 || changes.Load() != 1 {
		t.Fatalf("pushes=%d changes=%d", pushes.Load(), changes.Load())
	}
}

func TestDispatchSurfacesHandlerErrors(t *testing.T) {
	boom := errors.New("boom")
	engine := NewEngine(Params{
		Client: messaging.NewMemoryClient("t", 1),
		Logger: zaptest.NewLogger(t),
		Config: enabledConfig(),
		Registrations: []HandlerRegistration{
			{EventType: "x", Handler: func(context.Context, messaging.Message) error { return boom }},
		},
	})

	if err := engine.Dispatch(context.Background(), messaging.NewEvent("x", nil, nil)); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if err := engine.Dispatch(context.Background(), messaging.NewEvent("y", nil, nil)); err != nil {
		t.Fatalf("unhandled event should be dropped, got %v", err)
	}
}

func TestEngineDisabledDoesNotConsume(t *testing.T) {
	cfg := enabledConfig()
	cfg.Messaging.Workers.Enabled = false
	engine := NewEngine(Params{
		Client: messaging.NewMemoryClient("t", 1),
		Logger: zaptest.NewLogger(t),
		Config: cfg,
		Registrations: []HandlerRegistration{
			{EventType: "x", Handler: func(context.Context, messaging.Message) error { return nil }},
		},
	})
	if err := engine.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if engine.cancel != nil {
		t.Fatal("disabled engine should not spawn consumers")
	}
	if err := engine.stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
