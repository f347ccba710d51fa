// Package request provides a fluent builder for HTTP requests. Success and
// error hooks attached to a request may vote for a single transparent retry,
// and a built request can be aborted while in flight.
package request

import (
	"github.com/brizzai/auto-request/metrics"
	"github.com/brizzai/auto-request/transport"
	"go.uber.org/fx"
)

// Option configures a builder created with New
type Option func(*Builder)

// WithMetrics records execution metrics on c
func WithMetrics(c *metrics.Collector) Option {
	return func(b *Builder) {
		b.metrics = c
	}
}

// New starts a request to url dispatched through t
func New(url string, t transport.Transport, opts ...Option) *Builder {
	b := newBuilder(url, t, nil)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Factory creates builders sharing one transport and metrics collector
type Factory struct {
	transport transport.Transport
	metrics   *metrics.Collector
}

type FactoryParams struct {
	fx.In

	Transport transport.Transport
	Metrics   *metrics.Collector `optional:"true"`
}

// NewFactory creates a new Factory
func NewFactory(params FactoryParams) *Factory {
	return &Factory{
		transport: params.Transport,
		metrics:   params.Metrics,
	}
}

// New starts a request to url
func (f *Factory) New(url string) *Builder {
	return newBuilder(url, f.transport, f.metrics)
}
