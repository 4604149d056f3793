package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/vendordesk/internal/messaging"
	"github.com/Additional-Code/vendordesk/internal/notify"
	ordersvc "github.com/Additional-Code/vendordesk/internal/service/order"
	"github.com/Additional-Code/vendordesk/internal/worker"
)

// Refresher re-fetches the order list.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// NewPushHandler shows inbound pushes in the notification queue and refreshes
// the order list, since most pushes announce a new or changed order.
func NewPushHandler(logger *zap.Logger, queue *notify.Queue, orders *ordersvc.Service) worker.HandlerRegistration {
	return PushRegistration(logger, queue, orders)
}

// PushRegistration builds the push handler around any Refresher.
func PushRegistration(logger *zap.Logger, queue *notify.Queue, orders Refresher) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.vendor.push", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var push messaging.PushMessage
		if err := json.Unmarshal(msg.Value, &push); err != nil {
			logger.Error("failed to decode push message", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		if text := push.Text(); text != "" {
			queue.Push(text, notify.KindSuccess)
		}
		if err := orders.Refresh(ctx); err != nil {
			logger.Warn("refresh after push failed", zap.Error(err))
		}

		logger.Info("push message processed",
			zap.String("title", push.Notification.Title),
			zap.String("url", push.Data["url"]),
		)
		return nil
	}

	return worker.HandlerRegistration{
		EventType: messaging.EventPush,
		Handler:   handler,
	}
}
