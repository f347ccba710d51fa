package transport

import (
	"go.uber.org/fx"
)

// Module provides the transport module dependencies
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewHTTPTransport,
			fx.As(new(Transport)),
		),
		fx.Annotate(
			NewHTTPAuthManager,
			fx.As(new(AuthManager)),
		),
	),
)
