// Package metrics provides Prometheus metrics for the spotcheck game service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// scoreBuckets covers 0..10 found plus up to 90 bonus seconds.
var scoreBuckets = []float64{0, 2, 4, 6, 8, 10, 20, 40, 60, 80, 100} //nolint:gochecknoglobals // constant bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Game metrics
	sessionsStarted prometheus.Counter
	sessionsEnded   *prometheus.CounterVec
	taps            *prometheus.CounterVec
	finalScore      prometheus.Histogram
	activeSessions  prometheus.Gauge

	// Leaderboard metrics
	leaderboardSize          prometheus.Gauge
	leaderboardRecords       prometheus.Counter
	leaderboardPersistErrors prometheus.Counter

	// Submission metrics
	submissions     *prometheus.CounterVec
	deliveryLatency prometheus.Histogram

	// Queue and worker metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerActiveCount  prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	streamClients       prometheus.Gauge

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "spotcheck",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.sessionsStarted = m.counter("sessions_started_total", "Total number of sessions that entered play")
	m.sessionsEnded = m.counterVec("sessions_ended_total", "Total number of ended sessions by cause", "cause")
	m.taps = m.counterVec("taps_total", "Total number of taps by outcome", "outcome")
	m.finalScore = m.histogram("final_score", "Distribution of final session scores", scoreBuckets)
	m.activeSessions = m.gauge("active_sessions", "Number of sessions held in memory")

	m.leaderboardSize = m.gauge("leaderboard_size", "Number of entries on the leaderboard")
	m.leaderboardRecords = m.counter("leaderboard_records_total", "Total number of results written to the leaderboard")
	m.leaderboardPersistErrors = m.counter("leaderboard_persist_errors_total", "Total number of failed leaderboard writes")

	m.submissions = m.counterVec("submissions_total", "Result deliveries by sink and outcome", "sink", "outcome")
	m.deliveryLatency = m.histogram("submission_latency_milliseconds", "Result delivery latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("submit_queue_size", "Current number of pending result deliveries")
	m.queueCapacity = m.gauge("submit_queue_capacity", "Maximum number of pending result deliveries")
	m.queueEnqueue = m.counter("submit_queue_enqueue_total", "Total number of deliveries enqueued")
	m.queueDequeue = m.counter("submit_queue_dequeue_total", "Total number of deliveries dequeued")
	m.queueEnqueueErrors = m.counter("submit_queue_enqueue_errors_total", "Total number of deliveries rejected by the queue")
	m.workerActiveCount = m.gauge("submit_worker_active_count", "Number of running delivery workers")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.streamClients = m.gauge("stream_clients", "Number of connected session stream clients")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
}

// RecordSessionStarted counts a session entering play.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionEnded counts a finished session under its end cause.
func RecordSessionEnded(cause string) {
	globalManager.sessionsEnded.WithLabelValues(cause).Inc()
}

// RecordTap counts a tap as hit, miss or ignored.
func RecordTap(outcome string) {
	globalManager.taps.WithLabelValues(outcome).Inc()
}

// RecordFinalScore observes a computed session score.
func RecordFinalScore(score int) {
	globalManager.finalScore.Observe(float64(score))
}

// UpdateActiveSessions sets the number of sessions held in memory.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// UpdateLeaderboardSize sets the leaderboard entry count.
func UpdateLeaderboardSize(count int) {
	globalManager.leaderboardSize.Set(float64(count))
}

// RecordLeaderboardRecord counts a result written to the leaderboard.
func RecordLeaderboardRecord() {
	globalManager.leaderboardRecords.Inc()
}

// RecordLeaderboardPersistError counts a failed leaderboard write.
func RecordLeaderboardPersistError() {
	globalManager.leaderboardPersistErrors.Inc()
}

// RecordSubmission counts one delivery attempt outcome for a sink.
func RecordSubmission(sink, outcome string) {
	globalManager.submissions.WithLabelValues(sink, outcome).Inc()
}

// RecordDeliveryLatency observes how long one sink delivery took.
func RecordDeliveryLatency(latencyMs float64) {
	globalManager.deliveryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateStreamClients sets the number of open stream connections.
func UpdateStreamClients(count int) {
	globalManager.streamClients.Set(float64(count))
}

// RecordErrorByComponent records an error against a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry the global manager reports to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
