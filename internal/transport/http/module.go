package http

import (
	"go.uber.org/fx"

	notificationtransport "github.com/Additional-Code/vendordesk/internal/transport/http/notification"
	ordertransport "github.com/Additional-Code/vendordesk/internal/transport/http/order"
	sessiontransport "github.com/Additional-Code/vendordesk/internal/transport/http/session"
	vendortransport "github.com/Additional-Code/vendordesk/internal/transport/http/vendor"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	notificationtransport.Module,
	sessiontransport.Module,
	vendortransport.Module,
)
