// Package metrics holds the Prometheus metrics of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"msgvis/config"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Config metrics
	ConfigReloadsTotal *prometheus.CounterVec

	// Action history metrics
	ActionsWrittenTotal  *prometheus.CounterVec
	ActionsFallbackTotal prometheus.Counter

	// Cache metrics
	CacheRequestsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	f := promauto.With(registry)
	return &Metrics{
		ConfigReloadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgvis_config_reloads_total",
				Help: "Env file reload attempts by result",
			},
			[]string{"result"},
		),
		ActionsWrittenTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgvis_actions_written_total",
				Help: "Action history records written by origin",
			},
			[]string{"origin"}, // client, server
		),
		ActionsFallbackTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "msgvis_actions_fallback_total",
				Help: "Server-side action records written synchronously because the worker was full",
			},
		),
		CacheRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgvis_cache_requests_total",
				Help: "Cache lookups by backend and result",
			},
			[]string{"backend", "result"}, // hit, miss
		),
	}
}

// RecordReload counts a reload attempt. Its signature matches
// config.ReloadHook.
func (m *Metrics) RecordReload(_, _ *config.Settings, err error) {
	if err != nil {
		m.ConfigReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.ConfigReloadsTotal.WithLabelValues("success").Inc()
}

// RecordCache counts a cache lookup.
func (m *Metrics) RecordCache(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequestsTotal.WithLabelValues(backend, result).Inc()
}
