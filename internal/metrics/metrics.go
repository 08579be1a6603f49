package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for analysis runs
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the analysis collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	tableRows        prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "segstats_analyses_total",
				Help: "Total number of analyses run, by analysis and outcome.",
			},
			[]string{"analysis", "outcome"},
		),
		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "segstats_analysis_duration_seconds",
				Help:    "Wall-clock time spent in one analysis.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"analysis"},
		),
		tableRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "segstats_table_rows",
				Help: "Rows in the loaded customer table.",
			},
		),
	}
	m.registry.MustRegister(m.analysesTotal, m.analysisDuration, m.tableRows)
	return m
}

// ObserveAnalysis records one analysis run
func (m *Metrics) ObserveAnalysis(analysis, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(analysis, outcome).Inc()
	m.analysisDuration.WithLabelValues(analysis).Observe(elapsed.Seconds())
}

// SetTableRows records the size of the loaded table
func (m *Metrics) SetTableRows(rows int) {
	if m == nil {
		return
	}
	m.tableRows.Set(float64(rows))
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
