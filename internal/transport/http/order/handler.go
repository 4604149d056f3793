package order

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/vendordesk/internal/dto"
	"github.com/Additional-Code/vendordesk/internal/entity"
	"github.com/Additional-Code/vendordesk/internal/presentation/http/response"
	service "github.com/Additional-Code/vendordesk/internal/service/order"
	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/vendordesk/transport/http/order")

// Handler exposes the order view over HTTP.
type Handler struct {
	svc *service.Service
	now func() time.Time
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.GET("", h.list)
	g.POST("/refresh", h.refresh)
	g.DELETE("/modal", h.closeModal)
	g.GET("/:id", h.open)
	g.GET("/:id/actions", h.actions)
	g.PATCH("/:id/status", h.updateStatus)
}

// list renders the dashboard. ?status= takes a raw token and ?filter= a
// label; either one switches the filter and re-fetches.
func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	var err error
	switch {
	case c.QueryParams().Has("status"):
		err = h.svc.Fetch(ctx, c.QueryParam("status"))
	case c.QueryParams().Has("filter"):
		err = h.svc.SetFilter(ctx, c.QueryParam("filter"))
	}
	return h.renderView(b, err)
}

func (h *Handler) refresh(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.refresh")
	defer span.End()

	return h.renderView(b, h.svc.Refresh(ctx))
}

// renderView returns the dashboard even when the fetch failed, since the
// banner travels inside it. Only a missing session is an error response.
func (h *Handler) renderView(b *response.Builder, fetchErr error) error {
	if errorbank.Is(fetchErr, errorbank.KindUnauthorized) {
		return b.WithError(fetchErr).Build()
	}
	return b.WithData(dto.NewDashboard(h.svc.View(), h.now())).Build()
}

func (h *Handler) open(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.open", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if _, err := h.svc.OpenOrder(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	view := h.svc.View()
	if view.Modal == nil {
		return b.WithError(errorbank.Conflict("order detail was closed")).Build()
	}
	return b.WithData(dto.NewModal(*view.Modal, h.now())).Build()
}

func (h *Handler) closeModal(c echo.Context) error {
	h.svc.CloseModal()
	return response.New(c).WithNoContent().Build()
}

func (h *Handler) actions(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	view := h.svc.View()
	if view.Modal != nil && view.Modal.Order != nil && view.Modal.Order.ID == id {
		return b.WithData(dto.Actions(view.Modal.Order.Status)).Build()
	}
	for _, o := range view.Orders {
		if o.ID == id {
			return b.WithData(dto.Actions(o.Status)).Build()
		}
	}
	return b.WithError(errorbank.NotFound("order is not in the current view")).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload struct {
		OrderStatus string `json:"order_status"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", payload.OrderStatus),
	))
	defer span.End()

	if err := h.svc.UpdateStatus(ctx, id, entity.OrderStatus(payload.OrderStatus)); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewDashboard(h.svc.View(), h.now())).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
