package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "collabsearch"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode", "status"}, // mode: "public" / "private"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search pipeline duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"}, // "extract" / "resolve" / "total"
	)

	SearchSubqueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_subquery_errors_total",
			Help:      "Sub-queries dropped from a multi-search because the engine returned an error",
		},
		[]string{"index"},
	)

	SearchDroppedResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_dropped_results_total",
			Help:      "Hits dropped during resolution",
		},
		[]string{"type", "reason"},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_returned",
			Help:      "Results returned per output category",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 50},
		},
		[]string{"category"},
	)
)

// Drop reasons for SearchDroppedResultsTotal.
const (
	ReasonUnresolvable = "unresolvable"
	ReasonDenied       = "denied"
	ReasonOrphaned     = "orphaned"
	ReasonDraft        = "draft"
	ReasonOutOfScope   = "out_of_scope"
	ReasonNoStub       = "no_stub"
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchSubqueryErrorsTotal)
	prometheus.MustRegister(SearchDroppedResultsTotal)
	prometheus.MustRegister(SearchResultsReturned)
	searchMetricsRegistered = true
}
