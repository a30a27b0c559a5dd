// Package metrics exposes Prometheus collectors for the mounted tree:
// operation counts, open-handle count and node count. Following gcsfuse's
// "always construct the registry, only serve it if asked" pattern, the
// registry is created unconditionally and wired to an HTTP handler only
// when the caller chooses to serve it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds memfsd's operation counters.
type Registry struct {
	reg *prometheus.Registry

	Operations *prometheus.CounterVec
	Errors     *prometheus.CounterVec
	NodeCount  prometheus.Gauge
	OpenHandles prometheus.Gauge
}

// New creates a fresh, independent registry so multiple FS instances in
// one process (e.g. in tests) don't collide on global default-registry
// collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memfs",
			Name:      "operations_total",
			Help:      "Tree and kernel-adapter operations, by name.",
		}, []string{"op"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memfs",
			Name:      "errors_total",
			Help:      "Operations that returned a non-nil error, by kind.",
		}, []string{"kind"}),
		NodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memfs",
			Name:      "nodes",
			Help:      "Live nodes currently held by the tree.",
		}),
		OpenHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memfs",
			Name:      "open_handles",
			Help:      "Open kernel file handles across the tree.",
		}),
	}
	reg.MustRegister(r.Operations, r.Errors, r.NodeCount, r.OpenHandles)
	return r
}

// Handler returns the HTTP handler serving this registry in Prometheus
// exposition format, for a caller that wants to mount it on a debug
// ServeMux.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
