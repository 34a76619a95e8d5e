package moor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the connection-lifecycle counters and gauges a supervisor
// emits over its own isolated Prometheus registry, avoiding collisions when
// multiple clients run in the same process.
type Metrics struct {
	registry *prometheus.Registry

	connectAttempts  prometheus.Counter
	connectFailures  prometheus.Counter
	reconnects       prometheus.Counter
	connectionState  prometheus.Gauge
	recoverableCount prometheus.Gauge
}

// NewMetrics builds a Metrics instance with its own registry, labeling every
// metric it owns with the given client name.
func NewMetrics(clientName string) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"client": clientName}, registry)

	m := &Metrics{
		registry: registry,
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moor_connect_attempts_total",
			Help: "Total number of transport connect attempts.",
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moor_connect_failures_total",
			Help: "Total number of failed transport connect attempts.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moor_reconnects_total",
			Help: "Total number of completed reconnect cycles.",
		}),
		connectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moor_connection_state",
			Help: "Current connection state: 1 if open, 0 otherwise.",
		}),
		recoverableCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moor_recoverables",
			Help: "Number of producers and consumers currently registered for recovery.",
		}),
	}
	wrapped.MustRegister(m.connectAttempts, m.connectFailures, m.reconnects, m.connectionState, m.recoverableCount)
	return m
}

// Registry returns the Prometheus registry metrics are registered against,
// for embedding in an application's own /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving this Metrics' registry in the
// Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) recordConnectAttempt() {
	if m != nil {
		m.connectAttempts.Inc()
	}
}

func (m *Metrics) recordConnectFailure() {
	if m != nil {
		m.connectFailures.Inc()
	}
}

func (m *Metrics) recordReconnect() {
	if m != nil {
		m.reconnects.Inc()
	}
}

func (m *Metrics) setConnectionState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.connectionState.Set(1)
	} else {
		m.connectionState.Set(0)
	}
}

func (m *Metrics) setRecoverableCount(n int) {
	if m != nil {
		m.recoverableCount.Set(float64(n))
	}
}
