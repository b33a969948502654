package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts provider analyses by content kind and result (ok|failed).
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factcheck",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Total number of analyses, labeled by content kind and result.",
	}, []string{"kind", "result"})

	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "factcheck",
		Subsystem: "analyzer",
		Name:      "analysis_duration_seconds",
		Help:      "Wall time of a single provider analysis call including response mapping.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})

	// FailuresTotal breaks failed analyses down by internal cause; never exposed to callers.
	FailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factcheck",
		Subsystem: "analyzer",
		Name:      "failures_total",
		Help:      "Total number of failed analyses, labeled by cause.",
	}, []string{"cause"})

	LinkClassificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factcheck",
		Subsystem: "normalizer",
		Name:      "link_classifications_total",
		Help:      "Total number of submitted URLs, labeled by the content kind they were classified as.",
	}, []string{"kind"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "factcheck",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Total number of analyze requests rejected by the rate limiter.",
	})
)

// Register registers all collectors with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AnalysisDurationSeconds,
			FailuresTotal,
			LinkClassificationsTotal,
			RateLimitedTotal,
		)
	})
}
