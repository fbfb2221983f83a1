package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "city_agent"

// Metrics holds the Prometheus counters, histograms, and gauges for the agent.
type Metrics struct {
	PipelineRunning prometheus.Gauge

	// Stage metrics.
	StageRuns     *prometheus.CounterVec   // labels: stage, outcome={ok,error}
	StageDuration *prometheus.HistogramVec // labels: stage
	StageItems    *prometheus.CounterVec   // labels: stage, outcome={success,failure}

	// Store state as of the last stage that looked at it.
	StaleCities  prometheus.Gauge
	RankedCities prometheus.Gauge
	QueueLength  prometheus.Gauge

	Alerts *prometheus.CounterVec // labels: severity

	// Model metrics.
	LLMRequests *prometheus.CounterVec   // labels: kind={generate,refresh,alerts}, outcome={success,error,retry}
	LLMDuration *prometheus.HistogramVec // labels: kind

	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
	RecordCache     *prometheus.CounterVec // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline stage is executing, 0 otherwise.",
		}),
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of a pipeline stage.",
			Buckets:   []float64{0.1, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"stage"}),
		StageItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_items_total",
			Help:      "Cities processed by a stage, by outcome.",
		}, []string{"stage", "outcome"}),
		StaleCities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_cities",
			Help:      "Cities past the staleness threshold at the last refresh.",
		}),
		RankedCities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ranked_cities",
			Help:      "Cities included in the last ranking pass.",
		}),
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Cities waiting in the add queue after the last add run.",
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Safety alerts reported by the model, by severity.",
		}, []string{"severity"}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Model API requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		LLMDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Model API request duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"kind"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Changelog events written to the event stream, by outcome.",
		}, []string{"outcome"}),
		RecordCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_cache_total",
			Help:      "Record cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates and registers all agent metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRunning,
		m.StageRuns,
		m.StageDuration,
		m.StageItems,
		m.StaleCities,
		m.RankedCities,
		m.QueueLength,
		m.Alerts,
		m.LLMRequests,
		m.LLMDuration,
		m.EventsPublished,
		m.RecordCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
