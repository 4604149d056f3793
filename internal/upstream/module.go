package upstream

import "go.uber.org/fx"

// Module provides the vendor API client to Fx.
var Module = fx.Provide(NewClient)
