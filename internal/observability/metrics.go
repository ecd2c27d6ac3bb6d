package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sightings_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RowsLoaded    prometheus.Counter
	RowsDropped   *prometheus.CounterVec // labels: step={geo,date_time,incomplete}
	ValuesImputed *prometheus.CounterVec // labels: column
	ParseFailures *prometheus.CounterVec // labels: column
	RowsCleaned   prometheus.Gauge

	PipelineRunning  prometheus.Gauge
	PipelineDuration prometheus.Histogram

	// Sink metrics.
	SightingsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	PublishBatchSize   prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Total raw rows read from the input file.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows removed by cleaning, by step.",
		}, []string{"step"}),
		ValuesImputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_imputed_total",
			Help:      "Missing values replaced by imputation, by column.",
		}, []string{"column"}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Values that failed to parse and became missing, by column.",
		}, []string{"column"}),
		RowsCleaned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_cleaned",
			Help:      "Rows in the most recent cleaned table.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete load-clean-publish run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SightingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sightings_published_total",
			Help:      "Total cleaned sightings written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed publish attempts.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of sightings per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100, 250, 500, 1000},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Forward geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when coordinate backfill is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsLoaded,
		m.RowsDropped,
		m.ValuesImputed,
		m.ParseFailures,
		m.RowsCleaned,
		m.PipelineRunning,
		m.PipelineDuration,
		m.SightingsPublished,
		m.PublishErrors,
		m.PublishBatchSize,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
