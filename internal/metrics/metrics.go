package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_screener"

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Stage durations in seconds. Explanation stages dominate when a
	// generative provider is configured.
	stageBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

	ScreeningsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screenings_total",
			Help:      "Screening runs by final status",
		},
		[]string{"status"},
	)

	CandidatesTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Resumes processed across all runs",
		},
	)

	ExtractionFailures = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Resumes whose text could not be extracted",
		},
	)

	Explanations = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explanations_total",
			Help:      "Explanations produced by source",
		},
		[]string{"source"},
	)

	ExplanationFallbacks = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explanation_fallbacks_total",
			Help:      "Generative explanations replaced by the keyword heuristic",
		},
	)

	StageDuration = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   stageBuckets,
		},
		[]string{"stage"},
	)
)

var initOnce sync.Once

// Initialize adds the process collector. It is safe to call more than once.
func Initialize() {
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	})
}

// Handler exposes the screener registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
