// Package metrics exposes the service's own telemetry: how many accounts
// are registered and how health sweeps are behaving.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service's own collectors.
type Metrics struct {
	registry *prometheus.Registry

	// AccountsRegistered tracks the current size of the account registry.
	AccountsRegistered prometheus.Gauge

	// HealthSweeps counts completed health job activations.
	HealthSweeps prometheus.Counter

	// SweepDuration observes how long one full sweep takes.
	SweepDuration prometheus.Histogram

	// ProbeFailures counts failed probes per account.
	ProbeFailures *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry, together with the
// standard process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AccountsRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "promregistry_accounts_registered",
			Help: "Number of accounts currently in the registry.",
		}),
		HealthSweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "promregistry_health_sweeps_total",
			Help: "Completed health job activations.",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "promregistry_health_sweep_duration_seconds",
			Help:    "Duration of one full health sweep.",
			Buckets: prometheus.DefBuckets,
		}),
		ProbeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "promregistry_probe_failures_total",
			Help: "Failed health probes per account.",
		}, []string{"account"}),
	}
}

// Handler returns the HTTP handler serving the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
