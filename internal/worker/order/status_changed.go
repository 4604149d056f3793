package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/vendordesk/internal/messaging"
	ordersvc "github.com/Additional-Code/vendordesk/internal/service/order"
	"github.com/Additional-Code/vendordesk/internal/session"
	"github.com/Additional-Code/vendordesk/internal/worker"
)

// NewStatusChangedHandler keeps this dashboard in step with transitions made
// elsewhere, such as another dashboard instance or the CLI.
func NewStatusChangedHandler(logger *zap.Logger, sessions session.Provider, orders *ordersvc.Service) worker.HandlerRegistration {
	return StatusChangedRegistration(logger, sessions, orders, orders.InstanceID())
}

// StatusChangedRegistration builds the status-changed handler around any
// Refresher. Events for other vendors and events published by instanceID
// itself are ignored.
func StatusChangedRegistration(logger *zap.Logger, sessions session.Provider, orders Refresher, instanceID string) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		var event ordersvc.StatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode status changed event", zap.Error(err))
			return err
		}

		ctx, span := workerTracer.Start(ctx, "worker.orders.status_changed", trace.WithAttributes(
			attribute.Int64("order.id", event.OrderID),
			attribute.String("order.status", string(event.Status)),
		))
		defer span.End()

		if instanceID != "" && event.Source == instanceID {
			logger.Debug("status change ignored; published here", zap.Int64("order_id", event.OrderID))
			return nil
		}

		sess, err := sessions.Current(ctx)
		if err != nil {
			logger.Debug("status change ignored; no vendor signed in", zap.Int64("order_id", event.OrderID))
			return nil
		}
		if event.VendorID != "" && event.VendorID != sess.VendorID {
			return nil
		}

		if err := orders.Refresh(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "refresh failed")
			logger.Warn("refresh after status change failed", zap.Int64("order_id", event.OrderID), zap.Error(err))
		}

		logger.Info("order status change processed",
			zap.Int64("order_id", event.OrderID),
			zap.String("status", string(event.Status)),
		)
		return nil
	}

	return worker.HandlerRegistration{
		EventType: ordersvc.EventStatusChanged,
		Handler:   handler,
	}
}
