package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Params holds the dependencies of the metrics module
type Params struct {
	fx.In

	Registerer prometheus.Registerer `optional:"true"`
	Namespace  string                `name:"metrics_namespace" optional:"true"`
}

// New builds a Collector from fx parameters, falling back to a private registry
func New(params Params) *Collector {
	reg := params.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return NewCollector(reg, params.Namespace)
}

// Module provides the metrics collector
var Module = fx.Module("metrics",
	fx.Provide(New),
)
