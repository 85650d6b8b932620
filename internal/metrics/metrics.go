// Package metrics holds the server's in-process Prometheus collectors, fed
// by the worker pool and connection driver and optionally exported over a
// dedicated listener that is entirely separate from the raw-TCP origin
// server.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors holds the Prometheus instruments the server updates.
type Collectors struct {
	ActiveWorkers     prometheus.Gauge
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
	ConnectionsTotal  prometheus.Counter
	SaturationEvents  prometheus.Counter
	registry          *prometheus.Registry
}

// New registers a fresh set of collectors against a private registry, so
// multiple server instances (as in tests) never collide on global metrics.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collectors{
		registry: reg,
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "httpserver_active_workers",
			Help: "Number of workers currently inside the connection driver.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "httpserver_requests_total",
			Help: "Total requests dispatched, labeled by response status class.",
		}, []string{"status_class"}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "httpserver_request_duration_seconds",
			Help:    "Time from starting to read a request to finishing its response, including any wait for the request bytes.",
			Buckets: prometheus.DefBuckets,
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "httpserver_connections_total",
			Help: "Total accepted connections handed off to the worker pool.",
		}),
		SaturationEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "httpserver_saturation_events_total",
			Help: "Number of times the acceptor observed the pool saturated.",
		}),
	}
}

// ObserveStatus records a completed dispatch by status-code class (2xx, 4xx,
// 5xx, ...).
func (c *Collectors) ObserveStatus(status int, elapsed time.Duration) {
	class := statusClass(status)
	c.RequestsTotal.WithLabelValues(class).Inc()
	c.RequestDuration.Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}

// Serve starts a standalone HTTP listener (backed by net/http, distinct
// from the raw-TCP origin server) exposing these collectors at /metrics. It
// blocks until ctx is cancelled.
func (c *Collectors) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
