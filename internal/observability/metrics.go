package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	DetectionsFetched   prometheus.Counter
	DetectionsMalformed prometheus.Counter
	DetectionsExcluded  prometheus.Counter
	DetectionsScored    prometheus.Counter
	BuffersGenerated    prometheus.Counter
	DetectionsPublished prometheus.Counter
	RunErrors           prometheus.Counter
	PipelineRunning     prometheus.Gauge

	// Run-level metrics.
	BatchSize   prometheus.Histogram
	RunDuration prometheus.Histogram

	// Enrichment metrics.
	EnrichRequests    *prometheus.CounterVec   // labels: provider={noaa,airnow}, outcome={success,error}
	EnrichCache       *prometheus.CounterVec   // labels: provider={noaa,airnow}, result={hit,miss}
	EnrichAPIDuration *prometheus.HistogramVec // labels: provider={firms,noaa,airnow}
	WeatherEnabled    prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DetectionsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "detections_fetched_total",
			Help:      "Total detections fetched from the FIRMS API.",
		}),
		DetectionsMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "detections_malformed_total",
			Help:      "Total raw records skipped for missing required fields.",
		}),
		DetectionsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "detections_excluded_total",
			Help:      "Total detections excluded as likely industrial heat sources.",
		}),
		DetectionsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "detections_scored_total",
			Help:      "Total detections assigned a risk score.",
		}),
		BuffersGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "buffers_generated_total",
			Help:      "Total buffer zones generated.",
		}),
		DetectionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "detections_published_total",
			Help:      "Total scored detections published to the sink topic.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "run_errors_total",
			Help:      "Total ETL runs that failed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_etl",
			Name:      "batch_size",
			Help:      "Number of detections per fetched batch.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-filter-score-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		EnrichRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "enrich_requests_total",
			Help:      "Enrichment API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		EnrichCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "enrich_cache_total",
			Help:      "Enrichment cache lookups by provider and result.",
		}, []string{"provider", "result"}),
		EnrichAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildfire_etl",
			Name:      "enrich_api_duration_seconds",
			Help:      "Enrichment API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_etl",
			Name:      "weather_enabled",
			Help:      "1 when weather enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.DetectionsFetched,
		m.DetectionsMalformed,
		m.DetectionsExcluded,
		m.DetectionsScored,
		m.BuffersGenerated,
		m.DetectionsPublished,
		m.RunErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.RunDuration,
		m.EnrichRequests,
		m.EnrichCache,
		m.EnrichAPIDuration,
		m.WeatherEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DetectionsFetched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "detections_fetched_total"}),
		DetectionsMalformed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "detections_malformed_total"}),
		DetectionsExcluded:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "detections_excluded_total"}),
		DetectionsScored:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "detections_scored_total"}),
		BuffersGenerated:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "buffers_generated_total"}),
		DetectionsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "detections_published_total"}),
		RunErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "run_errors_total"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wildfire_etl", Name: "pipeline_running"}),
		BatchSize:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire_etl", Name: "batch_size"}),
		RunDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire_etl", Name: "run_duration_seconds"}),
		EnrichRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "enrich_requests_total"}, []string{"provider", "outcome"}),
		EnrichCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "enrich_cache_total"}, []string{"provider", "result"}),
		EnrichAPIDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "wildfire_etl", Name: "enrich_api_duration_seconds"}, []string{"provider"}),
		WeatherEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wildfire_etl", Name: "weather_enabled"}),
	}
}
