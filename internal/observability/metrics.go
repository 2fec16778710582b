package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the report service.
type Metrics struct {
	RowsExtracted       prometheus.Counter
	NormalizeErrors     *prometheus.CounterVec // labels: reason={unmapped_code,invalid_field}
	DatasetRecords      prometheus.Gauge
	DatasetLoadDuration prometheus.Histogram

	// Query metrics.
	Requests            *prometheus.CounterVec   // labels: endpoint, outcome={ok,bad_request,not_found,unavailable,rate_limited}
	AggregationDuration *prometheus.HistogramVec // labels: table
	SummaryCache        *prometheus.CounterVec   // labels: result={hit,miss}

	// Publishing metrics.
	SummariesPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	PublishEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RowsExtracted,
		m.NormalizeErrors,
		m.DatasetRecords,
		m.DatasetLoadDuration,
		m.Requests,
		m.AggregationDuration,
		m.SummaryCache,
		m.SummariesPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bike_report",
			Name:      "rows_extracted_total",
			Help:      "Total raw rows read from the source dataset.",
		}),
		NormalizeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bike_report",
			Name:      "normalize_errors_total",
			Help:      "Rows rejected during normalization, by reason.",
		}, []string{"reason"}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bike_report",
			Name:      "dataset_records",
			Help:      "Number of normalized records in the loaded dataset.",
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bike_report",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete extract-normalize load.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bike_report",
			Name:      "requests_total",
			Help:      "Report API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		AggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bike_report",
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent computing one aggregation table.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"table"}),
		SummaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bike_report",
			Name:      "summary_cache_total",
			Help:      "Summary cache lookups by result.",
		}, []string{"result"}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bike_report",
			Name:      "summaries_published_total",
			Help:      "Summary tables written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bike_report",
			Name:      "publish_errors_total",
			Help:      "Failed summary publish attempts.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bike_report",
			Name:      "publish_enabled",
			Help:      "1 when summary publishing to Kafka is enabled, 0 otherwise.",
		}),
	}
}
