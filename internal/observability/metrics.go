// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthorizationDenials counts denied operations by error code.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_authorization_denials_total",
		Help: "Total number of denied operations by error code",
	}, []string{"code"})

	// TokenResolutionFailures counts credential tokens that degraded to anonymous.
	TokenResolutionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_token_resolution_failures_total",
		Help: "Total number of inbound tokens that failed verification and resolved to anonymous",
	})

	// StoreLatency records store call latency by operation and entity.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_store_latency_seconds",
		Help:    "Store call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "entity"})

	// CascadePartialFailures counts multi-step operations that committed the
	// first step but failed before completing.
	CascadePartialFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cascade_partial_failures_total",
		Help: "Total number of cascade operations that partially applied",
	}, []string{"operation"})

	// CacheErrors counts Redis errors by command.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})
)

// TrackStoreCall returns a function that records store latency when called
// (typically via defer).
func TrackStoreCall(operation, entity string) func() {
	start := time.Now()
	return func() {
		StoreLatency.WithLabelValues(operation, entity).Observe(time.Since(start).Seconds())
	}
}
