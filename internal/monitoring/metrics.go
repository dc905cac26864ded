// internal/monitoring/metrics.go
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the extraction pipeline
type Metrics struct {
	PagesFetched    *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	PagesProcessed  *prometheus.CounterVec
	StateDecodeMiss *prometheus.CounterVec
	FieldMisses     *prometheus.CounterVec
	RawFallbacks    *prometheus.CounterVec
	RecordsUpserted *prometheus.CounterVec
	RecordsRejected *prometheus.CounterVec
	StoreErrors     *prometheus.CounterVec
	ExtractDuration *prometheus.HistogramVec
}

// MetricsConfig configures the metric namespace
type MetricsConfig struct {
	Namespace string `yaml:"namespace" json:"namespace"`
}

// NewMetrics registers the pipeline metrics with the default registry
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "listlift"
	}

	return &Metrics{
		PagesFetched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "pages_fetched_total",
				Help:      "Total number of pages fetched",
			},
			[]string{"host", "status_code"},
		),
		FetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "fetch_errors_total",
				Help:      "Total number of fetch errors",
			},
			[]string{"host", "error_type"},
		),
		FetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Page fetch duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		PagesProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "pages_processed_total",
				Help:      "Total number of pages run through extraction",
			},
			[]string{"document_type", "status"},
		),
		StateDecodeMiss: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "state_decode_misses_total",
				Help:      "Pages where no embedded state blob could be decoded",
			},
			[]string{"document_type"},
		),
		FieldMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "field_misses_total",
				Help:      "Fields absent after all extraction strategies",
			},
			[]string{"document_type", "field"},
		),
		RawFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "raw_fallbacks_total",
				Help:      "Fields kept as raw text after failed coercion",
			},
			[]string{"document_type"},
		),
		RecordsUpserted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "records_upserted_total",
				Help:      "Records written to the store",
			},
			[]string{"document_type"},
		),
		RecordsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "records_rejected_total",
				Help:      "Records rejected before storage",
			},
			[]string{"document_type", "reason"},
		),
		StoreErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Name:      "store_errors_total",
				Help:      "Store write failures",
			},
			[]string{"document_type"},
		),
		ExtractDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Name:      "extract_duration_seconds",
				Help:      "Per-page extraction duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5},
			},
			[]string{"document_type"},
		),
	}
}
