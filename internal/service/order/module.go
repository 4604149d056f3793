package order

import "go.uber.org/fx"

// Module provides the order view controller and its poller to Fx.
var Module = fx.Provide(NewService, NewPoller)
