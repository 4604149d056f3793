package devapi

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/vendordesk/internal/config"
)

// Module wires the emulated vendor API routes.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, cfg config.Config, h *Handler) {
		Register(e, h, cfg.Upstream.APIPath)
	}),
)
