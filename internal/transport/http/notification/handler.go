package notification

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/vendordesk/internal/notify"
	"github.com/Additional-Code/vendordesk/internal/presentation/http/response"
	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

// Module wires the notification endpoints.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)

// Handler exposes the notification queue.
type Handler struct {
	queue *notify.Queue
}

// NewHandler constructs a notification Handler.
func NewHandler(queue *notify.Queue) *Handler {
	return &Handler{queue: queue}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/notifications")
	g.GET("", h.list)
	g.DELETE("/:id", h.dismiss)
}

func (h *Handler) list(c echo.Context) error {
	return response.New(c).WithData(h.queue.List()).Build()
}

func (h *Handler) dismiss(c echo.Context) error {
	b := response.New(c)
	if !h.queue.Dismiss(c.Param("id")) {
		return b.WithError(errorbank.NotFound("notification not found")).Build()
	}
	return b.WithNoContent().Build()
}
