// Package obs exposes Prometheus metrics for the HTTP surface and the
// access-control domain.
package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Domain metrics
var (
	uploadGrantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_grants_total",
			Help: "Upload grants issued, by purpose.",
		},
		[]string{"purpose"},
	)

	accessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Read access decisions, by outcome and basis.",
		},
		[]string{"decision", "basis"},
	)

	ownershipConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ownership_conflicts_total",
			Help: "Policy writes rejected because the path belongs to another owner.",
		},
	)
)

var initOnce sync.Once

// Init registers all metrics in the default registry.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			uploadGrantsTotal, accessDecisionsTotal, ownershipConflictsTotal,
		)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument measures RPS, latency and in-flight count per route. The route
// template keeps label cardinality bounded; unmatched requests share one label.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	}
}

// RecordGrantIssued counts one issued upload grant.
func RecordGrantIssued(purpose string) {
	uploadGrantsTotal.WithLabelValues(purpose).Inc()
}

// RecordAccessDecision counts one read decision with its basis.
func RecordAccessDecision(allowed bool, basis string) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	accessDecisionsTotal.WithLabelValues(decision, basis).Inc()
}

// RecordOwnershipConflict counts one rejected policy write.
func RecordOwnershipConflict() {
	ownershipConflictsTotal.Inc()
}
