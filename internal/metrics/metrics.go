package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accident_risk_queries_total",
		Help: "Total risk queries by resulting level",
	}, []string{"level"})
	QueryErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accident_risk_query_errors_total",
		Help: "Total risk queries rejected before touching the indexes",
	})
	QueryDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "accident_risk_query_duration_ms",
		Help:    "Risk query duration in milliseconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 50},
	})
	RecordsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "accident_risk_records_loaded",
		Help: "Records held by the active engine",
	})
	RowsSkipped = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "accident_risk_rows_skipped",
		Help: "Raw rows dropped by the last load",
	})
	ReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accident_risk_reloads_total",
		Help: "Dataset reloads by status",
	}, []string{"status"})
	BuildDurationMs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "accident_risk_index_build_duration_ms",
		Help: "Index build duration of the active engine in milliseconds",
	})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryErrorsTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(RecordsLoaded)
	prometheus.MustRegister(RowsSkipped)
	prometheus.MustRegister(ReloadsTotal)
	prometheus.MustRegister(BuildDurationMs)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
