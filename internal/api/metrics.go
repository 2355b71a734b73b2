package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed, by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	generationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_attempts_total",
			Help: "Archetype generation requests, by kind (text or image) and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

// MetricsMiddleware records request counts and latency per route. The route
// template is used rather than the raw path so session ids do not explode
// the label space.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func recordGeneration(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	generationAttemptsTotal.WithLabelValues(kind, outcome).Inc()
}
