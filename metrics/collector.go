// Package metrics exposes Prometheus instrumentation for request execution and
// the HTTP transport. A nil *Collector is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "auto_request"

// Outcome labels for executions
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeHookFailure = "hook_failure"
)

// Collector records execution and transport metrics. It is safe for concurrent use.
type Collector struct {
	executionsTotal   *prometheus.CounterVec
	attemptsTotal     *prometheus.CounterVec
	retriesTotal      *prometheus.CounterVec
	hookFailuresTotal *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewCollector registers the collector's metrics on registry
func NewCollector(registry prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(registry)

	return &Collector{
		executionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Total number of executed requests by final outcome",
			},
			[]string{"method", "outcome"},
		),
		attemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Total number of transport calls issued by executions",
			},
			[]string{"method", "attempt"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Total number of retries requested by hooks",
			},
			[]string{"method", "phase"},
		),
		hookFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hook_failures_total",
				Help:      "Total number of hook invocations that failed",
			},
			[]string{"phase"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transport_request_duration_seconds",
				Help:      "Duration of HTTP calls issued by the transport",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "status_code"},
		),
	}
}

// RecordExecution counts a finished execution
func (c *Collector) RecordExecution(method, outcome string) {
	if c == nil {
		return
	}
	c.executionsTotal.WithLabelValues(method, outcome).Inc()
}

// RecordAttempt counts a transport call; attempt is 1 for the first call
func (c *Collector) RecordAttempt(method string, attempt int) {
	if c == nil {
		return
	}
	c.attemptsTotal.WithLabelValues(method, strconv.Itoa(attempt)).Inc()
}

// RecordRetry counts a retry vote that was honored
func (c *Collector) RecordRetry(method, phase string) {
	if c == nil {
		return
	}
	c.retriesTotal.WithLabelValues(method, phase).Inc()
}

// RecordHookFailure counts a failed hook phase
func (c *Collector) RecordHookFailure(phase string) {
	if c == nil {
		return
	}
	c.hookFailuresTotal.WithLabelValues(phase).Inc()
}

// ObserveRequest records the duration of a transport call. statusCode is 0 when
// no response was received.
func (c *Collector) ObserveRequest(method string, statusCode int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.WithLabelValues(method, statusLabel(statusCode)).Observe(elapsed.Seconds())
}

func statusLabel(code int) string {
	if code == 0 {
		return "none"
	}
	return strconv.Itoa(code)
}
