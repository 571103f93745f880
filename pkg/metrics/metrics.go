// Package metrics exposes the ambient Prometheus counters/gauges named in
// the domain stack: packets in/out, loaded chunk count, tracked entity
// count, and a histogram of A* path lengths (a proxy for node expansions).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric this client reports. Zero value is unusable;
// construct with New.
type Registry struct {
	registry *prometheus.Registry

	PacketsIn  prometheus.Counter
	PacketsOut prometheus.Counter

	LoadedChunks   prometheus.Gauge
	TrackedEntites prometheus.Gauge

	PathNodeExpansions prometheus.Histogram
}

// New registers every metric on a fresh, isolated registry (never the
// global default, so multiple clients in one process don't collide).
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		PacketsIn: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vibebot",
			Name:      "packets_in_total",
			Help:      "Inbound packets processed by the client.",
		}),
		PacketsOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vibebot",
			Name:      "packets_out_total",
			Help:      "Outbound packets sent by the client.",
		}),
		LoadedChunks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vibebot",
			Name:      "loaded_chunks",
			Help:      "Chunks currently held in the world cache.",
		}),
		TrackedEntites: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vibebot",
			Name:      "tracked_entities",
			Help:      "Entities currently held in the entity tracker.",
		}),
		PathNodeExpansions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vibebot",
			Name:      "pathfind_node_expansions",
			Help:      "Path length in cells per A* search (a proxy for nodes expanded).",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 12),
		}),
	}
}

// Handler serves this registry's metrics in the Prometheus exposition
// format, for wiring into an http.ServeMux.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
