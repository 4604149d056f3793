package order

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/vendordesk/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewPushHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewStatusChangedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)
