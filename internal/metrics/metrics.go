// Package metrics exposes Prometheus counters and gauges for pool
// population and scheduler activity, grounded on
// oriys-nova/internal/metrics/prometheus.go's registry-per-process
// pattern: one Registry wraps a private *prometheus.Registry so a
// process embedding xstreamrt doesn't collide with its own default
// registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps the xstreamrt Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	PoolSize       *prometheus.GaugeVec
	PoolBlocked    *prometheus.GaugeVec
	PoolMigrations *prometheus.GaugeVec
	PoolScheds     *prometheus.GaugeVec

	Dispatched   *prometheus.CounterVec
	Housekeeping prometheus.Counter
	SleepPasses  prometheus.Counter
	StopChecks   prometheus.Counter
}

// New creates a Registry under namespace (e.g. "xstreamrt") with the
// Go and process collectors attached, mirroring InitPrometheus in the
// teacher package.
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Registry{
		reg: reg,
		PoolSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_size",
			Help:      "Current container population of a pool (vtable.get_size).",
		}, []string{"pool"}),
		PoolBlocked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_blocked",
			Help:      "Units logically owned by a pool but currently suspended elsewhere.",
		}, []string{"pool"}),
		PoolMigrations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_migrations_inflight",
			Help:      "Units in flight toward a pool.",
		}, []string{"pool"}),
		PoolScheds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_num_scheds",
			Help:      "Number of schedulers currently referencing a pool.",
		}, []string{"pool"}),
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatched_total",
			Help:      "Units dispatched by the scheduler, by source pool priority index.",
		}, []string{"pool_index"}),
		Housekeeping: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_passes_total",
			Help:      "Housekeeping gates entered (event_freq dispatch attempts elapsed).",
		}),
		SleepPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sleep_passes_total",
			Help:      "Housekeeping gates where the preceding drain pass found no work.",
		}),
		StopChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stop_checks_total",
			Help:      "has_to_stop invocations.",
		}),
	}

	reg.MustRegister(
		m.PoolSize, m.PoolBlocked, m.PoolMigrations, m.PoolScheds,
		m.Dispatched, m.Housekeeping, m.SleepPasses, m.StopChecks,
	)
	return m
}

// Handler returns an http.Handler serving this registry in the
// Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
