package metrics

import "github.com/prometheus/client_golang/prometheus"

// Table Prometheus metrics.
var (
	RowsNormalizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resultgrid",
			Name:      "rows_normalized_total",
			Help:      "Total number of hits normalized into rows",
		},
	)

	RowsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resultgrid",
			Name:      "rows_dropped_total",
			Help:      "Total number of hits dropped because the original document was malformed",
		},
	)

	SortRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resultgrid",
			Name:      "sort_requests_total",
			Help:      "Sort toggle requests by mode and outcome",
		},
		[]string{"mode", "outcome"}, // outcome: "applied" / "ignored"
	)

	DelegatedIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resultgrid",
			Name:      "delegated_intents_total",
			Help:      "Sort intents handed to the query layer",
		},
		[]string{"kind"}, // "directives" / "none"
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resultgrid",
			Name:      "query_duration_seconds",
			Help:      "Query layer request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"op", "status"},
	)

	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resultgrid",
			Name:      "exports_total",
			Help:      "Table exports by format and status",
		},
		[]string{"format", "status"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resultgrid",
			Name:      "active_sessions",
			Help:      "Table sessions currently held",
		},
	)
)

var tableMetricsRegistered bool

// RegisterTableMetrics registers Prometheus table metrics. Must be called once from main.
func RegisterTableMetrics() {
	if tableMetricsRegistered {
		return
	}
	prometheus.MustRegister(RowsNormalizedTotal)
	prometheus.MustRegister(RowsDroppedTotal)
	prometheus.MustRegister(SortRequestsTotal)
	prometheus.MustRegister(DelegatedIntentsTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(ExportsTotal)
	prometheus.MustRegister(ActiveSessions)
	tableMetricsRegistered = true
}

// ObserveResults records a normalization pass.
func ObserveResults(hits, dropped int) {
	RowsNormalizedTotal.Add(float64(hits - dropped))
	RowsDroppedTotal.Add(float64(dropped))
}
