package session

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/vendordesk/internal/presentation/http/response"
	ordersvc "github.com/Additional-Code/vendordesk/internal/service/order"
	vendorsvc "github.com/Additional-Code/vendordesk/internal/service/vendor"
	"github.com/Additional-Code/vendordesk/internal/upstream"
	"github.com/Additional-Code/vendordesk/pkg/errorbank"
)

// Module wires the session endpoints.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)

// Refresher re-fetches the order list after the identity changes.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Handler exposes sign-in, sign-up and sign-out.
type Handler struct {
	vendors *vendorsvc.Service
	orders  Refresher
	logger  *zap.Logger
}

// NewHandler constructs a session Handler.
func NewHandler(vendors *vendorsvc.Service, orders *ordersvc.Service, logger *zap.Logger) *Handler {
	return &Handler{vendors: vendors, orders: orders, logger: logger}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/session")
	g.GET("", h.whoami)
	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.DELETE("", h.logout)
}

type sessionResponse struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name,omitempty"`
	Greeting   string `json:"greeting,omitempty"`
}

func (h *Handler) whoami(c echo.Context) error {
	b := response.New(c)
	id, err := h.vendors.Whoami(c.Request().Context())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(sessionResponse{VendorID: id.VendorID, VendorName: id.VendorName, Greeting: id.Greeting}).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx := c.Request().Context()
	sess, err := h.vendors.Login(ctx, payload.Name, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	h.refresh(ctx)

	return b.WithData(sessionResponse{VendorID: sess.VendorID, VendorName: sess.VendorName}).Build()
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload upstream.Registration
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := h.vendors.Register(c.Request().Context(), payload); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(map[string]string{"message": "Registration successful"}).Build()
}

func (h *Handler) logout(c echo.Context) error {
	b := response.New(c)
	ctx := c.Request().Context()
	if err := h.vendors.Logout(ctx); err != nil {
		return b.WithError(err).Build()
	}
	h.refresh(ctx)
	return b.WithNoContent().Build()
}

func (h *Handler) refresh(ctx context.Context) {
	if err := h.orders.Refresh(ctx); err != nil && h.logger != nil {
		h.logger.Debug("refresh after session change failed", zap.Error(err))
	}
}
