// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the API-level counters.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	playsCounted    prometheus.Counter
	upstreamFail    prometheus.Counter
	tokensRefreshed prometheus.Counter
}

// NewCollector builds a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "melodix_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "melodix_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		playsCounted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "melodix_plays_counted_total",
			Help: "Play sessions that qualified for the play counter.",
		}),
		upstreamFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "melodix_catalog_upstream_failures_total",
			Help: "Failed calls to the upstream catalog APIs.",
		}),
		tokensRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "melodix_tokens_refreshed_total",
			Help: "Auth tokens silently renewed during requests.",
		}),
	}
	reg.MustRegister(c.httpRequests, c.httpLatency, c.playsCounted, c.upstreamFail, c.tokensRefreshed)
	return c
}

// RecordPlayCounted bumps the qualified-play counter.
func (c *Collector) RecordPlayCounted() { c.playsCounted.Inc() }

// RecordUpstreamFailure bumps the catalog failure counter.
func (c *Collector) RecordUpstreamFailure() { c.upstreamFail.Inc() }

// RecordTokenRefreshed bumps the silent-renewal counter.
func (c *Collector) RecordTokenRefreshed() { c.tokensRefreshed.Inc() }

// Middleware observes every request's method, route template, status and
// latency.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			start := time.Now()
			err := next(ec)
			status := ec.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			c.httpRequests.WithLabelValues(ec.Request().Method, ec.Path(), strconv.Itoa(status)).Inc()
			c.httpLatency.Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the /metrics endpoint for the given registry.
func Handler(reg *prometheus.Registry) echo.HandlerFunc {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return echo.WrapHandler(h)
}
