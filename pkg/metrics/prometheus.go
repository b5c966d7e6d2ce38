// Package metrics provides Prometheus metrics for the gridiron analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Contest lifecycle metrics.
	contestsSeeded   prometheus.Counter
	contestsLocked   *prometheus.CounterVec
	contestsScored   prometheus.Counter
	scoringDuplicate prometheus.Counter
	scoringErrors    prometheus.Counter

	// Pick metrics.
	picksSubmitted    prometheus.Counter
	picksRejectedLock prometheus.Counter

	// Broadcast bus metrics.
	broadcastEvents     prometheus.Counter
	broadcastDuplicates prometheus.Counter

	// Repository metrics.
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Default histogram buckets in milliseconds.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridiron",
		subsystem:        "core",
		histogramBuckets: defaultBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.contestsSeeded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contests_seeded_total",
		Help:      "Number of pick'em contests created with baseline predictions.",
	})
	m.contestsLocked = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contests_locked_total",
		Help:      "Number of contests transitioned to LOCKED, by trigger.",
	}, []string{"trigger"})
	m.contestsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contests_scored_total",
		Help:      "Number of contests scored against final results.",
	})
	m.scoringDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_duplicate_attempts_total",
		Help:      "Scoring invocations that lost the scored-marker race or hit an already scored contest.",
	})
	m.scoringErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Scoring passes that failed while applying member deltas.",
	})

	m.picksSubmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_submitted_total",
		Help:      "Individual game picks accepted from members.",
	})
	m.picksRejectedLock = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_rejected_locked_total",
		Help:      "Pick submissions rejected because the contest was locked.",
	})

	m.broadcastEvents = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_events_total",
		Help:      "Broadcast-start notifications consumed from the event bus.",
	})
	m.broadcastDuplicates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcast_duplicate_events_total",
		Help:      "Broadcast notifications skipped as duplicate deliveries.",
	})

	m.repositoryUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_ms",
		Help:      "Latency of repository writes in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.repositoryQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_ms",
		Help:      "Latency of repository reads in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Registry returns the manager's Prometheus registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// defaultManager backs the package-level helpers.
var defaultManager = NewManager()

// RecordContestSeeded increments the seeded-contest counter.
func RecordContestSeeded() { defaultManager.contestsSeeded.Inc() }

// RecordContestLocked increments the locked-contest counter for a trigger.
func RecordContestLocked(trigger string) {
	defaultManager.contestsLocked.WithLabelValues(trigger).Inc()
}

// RecordContestScored increments the scored-contest counter.
func RecordContestScored() { defaultManager.contestsScored.Inc() }

// RecordScoringDuplicate increments the duplicate-scoring counter.
func RecordScoringDuplicate() { defaultManager.scoringDuplicate.Inc() }

// RecordScoringError increments the scoring-error counter.
func RecordScoringError() { defaultManager.scoringErrors.Inc() }

// RecordPickSubmitted adds n accepted picks.
func RecordPickSubmitted(n int) { defaultManager.picksSubmitted.Add(float64(n)) }

// RecordPickRejectedLocked increments the locked-rejection counter.
func RecordPickRejectedLocked() { defaultManager.picksRejectedLock.Inc() }

// RecordBroadcastEvent increments the consumed-broadcast counter.
func RecordBroadcastEvent() { defaultManager.broadcastEvents.Inc() }

// RecordBroadcastDuplicate increments the duplicate-broadcast counter.
func RecordBroadcastDuplicate() { defaultManager.broadcastDuplicates.Inc() }

// RecordRepositoryUpdateLatency observes a repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	defaultManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency observes a repository read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	defaultManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// GetRegistry returns the default manager's registry for exposition.
func GetRegistry() *prometheus.Registry { return defaultManager.Registry() }
