package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	DocumentOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textdex",
			Name:      "document_operations_total",
			Help:      "Total document operations staged",
		},
		[]string{"collection", "operation"}, // "add" / "update" / "delete"
	)

	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textdex",
			Name:      "commits_total",
			Help:      "Total commits applied",
		},
		[]string{"collection", "trigger"}, // "explicit" / "scheduled" / "shutdown"
	)

	CommitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textdex",
			Name:      "commit_duration_seconds",
			Help:      "Commit duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"collection"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textdex",
			Name:      "searches_total",
			Help:      "Total search requests executed",
		},
		[]string{"collection", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textdex",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"collection"},
	)

	CollectionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "textdex",
			Name:      "collections_open",
			Help:      "Number of open collections",
		},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(DocumentOpsTotal)
	prometheus.MustRegister(CommitsTotal)
	prometheus.MustRegister(CommitDuration)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(CollectionsOpen)
	engineMetricsRegistered = true
}
