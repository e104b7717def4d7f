// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for the dashboard API plus a
// pair of domain collectors the sync pipeline feeds. Labels stay on the
// registered route pattern, never the raw URL, so cardinality stays bounded.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediumsync",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// A manual sync run blocks for minutes, so the buckets stretch well past
	// the defaults.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mediumsync",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60, 120, 300, 600},
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of in-flight requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mediumsync",
			Name:      "http_requests_inflight",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	// syncRuns counts completed sync runs by outcome.
	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediumsync",
			Name:      "sync_runs_total",
			Help:      "Total number of sync runs by outcome.",
		},
		[]string{"outcome"},
	)

	// articlesSynced counts articles successfully republished.
	articlesSynced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mediumsync",
			Name:      "articles_synced_total",
			Help:      "Total number of articles republished to WordPress.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, syncRuns, articlesSynced)
}

// ObserveSyncRun records the outcome of one sync run for the dashboard's
// Prometheus scrape. outcome is "success" or "error".
func ObserveSyncRun(outcome string, synced int) {
	syncRuns.WithLabelValues(outcome).Inc()
	if synced > 0 {
		articlesSynced.Add(float64(synced))
	}
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// The "path" label uses the registered route (c.FullPath()) and falls back
// to c.Request.URL.Path when no route matched.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(dur)
	}
}
