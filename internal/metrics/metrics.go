package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SeedRuns counts bootstrap seeding attempts.
	SeedRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "microblog_seed_runs_total",
		Help: "Number of bootstrap seeding runs started.",
	})
	// SeedErrors counts failed seeding runs.
	SeedErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "microblog_seed_errors_total",
		Help: "Number of bootstrap seeding runs that failed.",
	})
	seedDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "microblog_seed_duration_seconds",
		Help:    "Wall time of a full bootstrap seeding run.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
	storeRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_store_retries_total",
		Help: "Store operations retried after a transient failure.",
	}, []string{"op"})
	storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_store_failures_total",
		Help: "Store operations that failed after exhausting retries.",
	}, []string{"op"})
)

// IncStoreRetry records one retry of the named store operation.
func IncStoreRetry(op string) {
	storeRetries.WithLabelValues(op).Inc()
}

// IncStoreFailure records a store operation giving up after retries.
func IncStoreFailure(op string) {
	storeFailures.WithLabelValues(op).Inc()
}

// ObserveSeedDuration records the elapsed time since start of a seeding run.
func ObserveSeedDuration(start time.Time) {
	seedDuration.Observe(time.Since(start).Seconds())
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
