// Package metrics exposes container activity to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-scoped/framework/container"
)

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ResolutionCollector counts container resolutions. Attach Observe as a
// container observer:
//
//	root.AfterResolving(collector.Observe)
type ResolutionCollector struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewResolutionCollector creates the counters and registers them with reg.
func NewResolutionCollector(reg prometheus.Registerer) (*ResolutionCollector, error) {
	c := &ResolutionCollector{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "container_resolutions_total",
			Help: "Successful container resolutions by qualifier and source (cache or resolver).",
		}, []string{"qualifier", "source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "container_resolution_failures_total",
			Help: "Failed container resolutions by reason.",
		}, []string{"reason"}),
	}

	for _, col := range []prometheus.Collector{c.resolutions, c.failures} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe records one resolution event. A failure is counted once, under the
// reason it started with; type mismatches count when a resolver's Get fails.
func (c *ResolutionCollector) Observe(ev container.ResolveEvent) {
	if ev.Err != nil {
		c.failures.WithLabelValues(reason(ev.Err)).Inc()
		return
	}

	source := "resolver"
	if ev.Cached {
		source = "cache"
	}
	c.resolutions.WithLabelValues(ev.Qualifier.String(), source).Inc()
}

func reason(err error) string {
	switch {
	case errors.Is(err, container.ErrUnknownDependency):
		return "unknown"
	case errors.Is(err, container.ErrCircularDependency):
		return "cycle"
	case errors.Is(err, container.ErrTypeMismatch):
		return "type"
	default:
		return "resolver"
	}
}
