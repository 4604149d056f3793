package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/vendordesk/internal/cache"
	"github.com/Additional-Code/vendordesk/internal/config"
	"github.com/Additional-Code/vendordesk/internal/database"
	"github.com/Additional-Code/vendordesk/internal/devapi"
	"github.com/Additional-Code/vendordesk/internal/health"
	"github.com/Additional-Code/vendordesk/internal/logger"
	"github.com/Additional-Code/vendordesk/internal/messaging"
	"github.com/Additional-Code/vendordesk/internal/migration"
	"github.com/Additional-Code/vendordesk/internal/notify"
	"github.com/Additional-Code/vendordesk/internal/observability"
	repositorymenuitem "github.com/Additional-Code/vendordesk/internal/repository/menuitem"
	repositoryorder "github.com/Additional-Code/vendordesk/internal/repository/order"
	repositoryvendor "github.com/Additional-Code/vendordesk/internal/repository/vendor"
	"github.com/Additional-Code/vendordesk/internal/seeder"
	grpcserver "github.com/Additional-Code/vendordesk/internal/server/grpc"
	httpserver "github.com/Additional-Code/vendordesk/internal/server/http"
	serviceorder "github.com/Additional-Code/vendordesk/internal/service/order"
	servicevendor "github.com/Additional-Code/vendordesk/internal/service/vendor"
	"github.com/Additional-Code/vendordesk/internal/session"
	transporthttp "github.com/Additional-Code/vendordesk/internal/transport/http"
	"github.com/Additional-Code/vendordesk/internal/upstream"
	"github.com/Additional-Code/vendordesk/internal/worker"
	workerorder "github.com/Additional-Code/vendordesk/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
)

// Client talks to the vendor API and holds the dashboard state. One-shot CLI
// commands run on it alone.
var Client = fx.Options(
	Core,
	cache.Module,
	session.Module,
	upstream.Module,
	messaging.Module,
	notify.Module,
	serviceorder.Module,
	servicevendor.Module,
)

// Polling refreshes orders in the background and feeds the result into the
// health state.
var Polling = fx.Options(
	health.Module,
	fx.Provide(func(s *health.State) serviceorder.HealthReporter { return s }),
	fx.Invoke(func(*serviceorder.Poller) {}),
)

// Consumers processes bus events for the signed-in vendor.
var Consumers = fx.Options(
	worker.Module,
	workerorder.Module,
)

// Dashboard wires the HTTP and gRPC surfaces, the poller and the bus consumers.
var Dashboard = fx.Options(
	Client,
	Polling,
	httpserver.Module,
	transporthttp.Module,
	grpcserver.Module,
	Consumers,
)

// Worker exposes background bus processing without any serving surface.
var Worker = fx.Options(
	Client,
	Consumers,
)

// Store opens the development database and its repositories.
var Store = fx.Options(
	Core,
	database.Module,
	repositoryvendor.Module,
	repositorymenuitem.Module,
	repositoryorder.Module,
)

// Maintenance adds schema migration and seeding on top of Store.
var Maintenance = fx.Options(
	Store,
	migration.Module,
	seeder.Module,
)

// DevAPI serves the emulated vendor API on its own port.
var DevAPI = fx.Options(
	Store,
	messaging.Module,
	fx.Decorate(func(cfg config.Config) config.Config {
		cfg.HTTP = cfg.DevAPI.HTTP
		return cfg
	}),
	httpserver.Module,
	devapi.Module,
)

// Module is the default application wiring.
var Module = Dashboard
