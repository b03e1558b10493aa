package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	evaluationsSubmitted  prometheus.Counter
	levelDecisionsTotal   *prometheus.CounterVec
	resultsRequestsTotal  *prometheus.CounterVec
	entriesImportedTotal  prometheus.Counter
	eventsPublishFailures prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors of the judging API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "judging_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "judging_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "judging_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		evaluationsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evaluations_submitted_total",
			Help: "Evaluations recorded through the judging endpoint.",
		})

		levelDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "level_decisions_total",
			Help: "Outcome of the skill-level step after each judging submission.",
		}, []string{"outcome"})

		resultsRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_requests_total",
			Help: "Results snapshots served, by caller visibility and cache outcome.",
		}, []string{"visibility", "cache"})

		entriesImportedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "entries_imported_total",
			Help: "Entries created through bulk import.",
		})

		eventsPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "judging_events_publish_failures_total",
			Help: "Judging events that could not be published to the broker.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			evaluationsSubmitted,
			levelDecisionsTotal,
			resultsRequestsTotal,
			entriesImportedTotal,
			eventsPublishFailures,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error response counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// EvaluationsSubmitted counts recorded judging submissions.
func EvaluationsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return evaluationsSubmitted
}

// LevelDecisions counts level outcomes by decision.
func LevelDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return levelDecisionsTotal
}

// ResultsRequests counts results snapshots.
func ResultsRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return resultsRequestsTotal
}

// EntriesImported counts imported entries.
func EntriesImported() prometheus.Counter {
	RegisterMetrics()
	return entriesImportedTotal
}

// EventPublishFailures counts broker publish failures.
func EventPublishFailures() prometheus.Counter {
	RegisterMetrics()
	return eventsPublishFailures
}
