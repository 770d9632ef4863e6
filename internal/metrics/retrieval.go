package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	RetrievalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grounder",
			Name:      "retrievals_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"status"}, // "ok" / "empty" / "error"
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grounder",
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval request duration in seconds, embedding included",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"path"}, // "full" / "filtered"
	)

	RetrievalCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "grounder",
			Name:      "retrieval_candidates",
			Help:      "Candidate set size after filtering",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics.
// Must be called once from the pipeline constructor.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalsTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalCandidates)
	retrievalMetricsRegistered = true
}
