package main

import (
	"context"
	"fmt"

	"github.com/brizzai/auto-request/internal/config"
	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/metrics"
	"github.com/brizzai/auto-request/request"
	"github.com/brizzai/auto-request/transport"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// client holds what a command needs to issue requests
type client struct {
	app      *fx.App
	factory  *request.Factory
	registry *prometheus.Registry
}

// newClient wires the transport, metrics and request modules for cfg.
// Metrics are collected when enabled in the configuration or when withMetrics is set.
func newClient(ctx context.Context, cfg *config.Config, withMetrics bool) (*client, error) {
	c := &client{registry: prometheus.NewRegistry()}

	options := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger.GetLogger()}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Supply(&cfg.Client),
		transport.Module,
		request.Module,
		fx.Populate(&c.factory),
	}
	if cfg.Metrics.Enabled || withMetrics {
		options = append(options,
			fx.Provide(func() prometheus.Registerer { return c.registry }),
			fx.Supply(fx.Annotated{Name: "metrics_namespace", Target: cfg.Metrics.Namespace}),
			metrics.Module,
		)
	}

	c.app = fx.New(options...)
	if err := c.app.Err(); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	if err := c.app.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start client: %w", err)
	}
	return c, nil
}

func (c *client) Close(ctx context.Context) {
	if err := c.app.Stop(ctx); err != nil {
		logger.Warn("failed to stop client", zap.Error(err))
	}
}
