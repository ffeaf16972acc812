// Package metrics provides Prometheus metrics for the versus ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Vote pipeline
	votesCast     prometheus.Counter
	votesRejected *prometheus.CounterVec
	voteLatency   prometheus.Histogram
	totalVotes    prometheus.Gauge

	// Matchup sampling
	matchupsServed prometheus.Counter
	epochResets    prometheus.Counter

	// Sessions
	sessionsCreated prometheus.Counter
	sessionsExpired prometheus.Counter
	sessionsActive  prometheus.Gauge

	// Rating store
	storeErrors     *prometheus.CounterVec
	storeFallbacks  prometheus.Counter
	auditAppends    prometheus.Counter
	auditDrops      prometheus.Counter
	auditQueueDepth prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go runtime collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "versus",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates and registers all metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.votesCast = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_cast_total",
		Help:      "Total number of votes accepted and applied to ratings",
	})

	m.votesRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "votes_rejected_total",
			Help:      "Total number of rejected votes by reason (stale, unknown_session, bad_pair)",
		},
		[]string{"reason"},
	)

	m.voteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vote_latency_milliseconds",
		Help:      "Histogram of end-to-end vote handling latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.totalVotes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "global_votes",
		Help:      "Total votes recorded in the shared global aggregate",
	})

	m.matchupsServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchups_served_total",
		Help:      "Total number of matchups generated",
	})

	m.epochResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sampler_epoch_resets_total",
		Help:      "Total number of sampler epoch resets after pair exhaustion",
	})

	m.sessionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_created_total",
		Help:      "Total number of voting sessions created",
	})

	m.sessionsExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_expired_total",
		Help:      "Total number of sessions reaped by the TTL janitor",
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Current number of live voting sessions",
	})

	m.storeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_errors_total",
			Help:      "Total number of rating store errors by operation",
		},
		[]string{"op"},
	)

	m.storeFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_fallbacks_total",
		Help:      "Times the service fell back to the in-memory store",
	})

	m.auditAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_appends_total",
		Help:      "Vote events durably appended to the audit log",
	})

	m.auditDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_drops_total",
		Help:      "Vote events dropped due to backpressure or store failure",
	})

	m.auditQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_queue_depth",
		Help:      "Current depth of the vote audit queue",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the registry backing the global manager, for promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording against the global manager.

// RecordVoteCast increments the accepted-vote counter.
func RecordVoteCast() {
	if globalManager.enabled {
		globalManager.votesCast.Inc()
	}
}

// RecordVoteRejected increments the rejected-vote counter for a reason.
func RecordVoteRejected(reason string) {
	if globalManager.enabled {
		globalManager.votesRejected.WithLabelValues(reason).Inc()
	}
}

// RecordVoteLatency observes end-to-end vote handling latency.
func RecordVoteLatency(ms float64) {
	if globalManager.enabled {
		globalManager.voteLatency.Observe(ms)
	}
}

// UpdateTotalVotes sets the global aggregate vote counter gauge.
func UpdateTotalVotes(n int64) {
	if globalManager.enabled {
		globalManager.totalVotes.Set(float64(n))
	}
}

// RecordMatchupServed increments the served-matchup counter.
func RecordMatchupServed() {
	if globalManager.enabled {
		globalManager.matchupsServed.Inc()
	}
}

// RecordEpochReset increments the sampler epoch reset counter.
func RecordEpochReset() {
	if globalManager.enabled {
		globalManager.epochResets.Inc()
	}
}

// RecordSessionCreated increments the session creation counter.
func RecordSessionCreated() {
	if globalManager.enabled {
		globalManager.sessionsCreated.Inc()
	}
}

// RecordSessionExpired increments the session expiry counter.
func RecordSessionExpired() {
	if globalManager.enabled {
		globalManager.sessionsExpired.Inc()
	}
}

// UpdateActiveSessions sets the live session gauge.
func UpdateActiveSessions(n int) {
	if globalManager.enabled {
		globalManager.sessionsActive.Set(float64(n))
	}
}

// RecordStoreError increments the store error counter for an operation.
func RecordStoreError(op string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// RecordStoreFallback increments the in-memory fallback counter.
func RecordStoreFallback() {
	if globalManager.enabled {
		globalManager.storeFallbacks.Inc()
	}
}

// RecordAuditAppend increments the audit append counter.
func RecordAuditAppend() {
	if globalManager.enabled {
		globalManager.auditAppends.Inc()
	}
}

// RecordAuditDrop increments the audit drop counter.
func RecordAuditDrop() {
	if globalManager.enabled {
		globalManager.auditDrops.Inc()
	}
}

// UpdateAuditQueueDepth sets the audit queue depth gauge.
func UpdateAuditQueueDepth(n int) {
	if globalManager.enabled {
		globalManager.auditQueueDepth.Set(float64(n))
	}
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes the HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
	}
}
