package request

import (
	"go.uber.org/fx"
)

// Module provides the request factory
var Module = fx.Options(
	fx.Provide(NewFactory),
)
