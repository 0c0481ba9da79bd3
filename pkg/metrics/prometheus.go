package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Race history
	racesRecorded       prometheus.Counter
	historyRows         prometheus.Gauge
	activeGame          prometheus.Gauge
	submissionsDup      prometheus.Counter
	submissionsRejected *prometheus.CounterVec

	// Analytics
	recommendations *prometheus.CounterVec
	patternsFound   prometheus.Gauge
	analysisLatency *prometheus.HistogramVec

	// Record store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Append queue and writer
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	writerLatency      prometheus.Histogram
	writerErrors       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry served at /healthz

var globalManager = NewManager(WithRegisterer(customRegistry)) //nolint:gochecknoglobals // singleton behind the package helpers

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "racebet",
		subsystem:      "engine",
		latencyBuckets: DefaultLatencyBuckets,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.latencyBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.racesRecorded = m.counter("races_recorded_total", "Total number of race results appended to the history")
	m.historyRows = m.gauge("history_rows", "Number of rows in the current race history snapshot")
	m.activeGame = m.gauge("active_game", "Id of the game in progress, 0 when idle")
	m.submissionsDup = m.counter("submissions_duplicate_total", "Submissions skipped because their id was already recorded")
	m.submissionsRejected = m.counterVec("submissions_rejected_total", "Submissions rejected before reaching the store", "reason")

	m.recommendations = m.counterVec("recommendations_total", "Recommendations served, by the strategy that produced them", "source")
	m.patternsFound = m.gauge("patterns_found", "Repeated (game, order) pairs found by the last pattern scan")
	m.analysisLatency = m.histogramVec("analysis_latency_milliseconds", "Latency of analytic operations in milliseconds", "operation")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Record store operation latency in milliseconds", "operation")
	m.storeErrors = m.counterVec("store_errors_total", "Record store failures", "operation")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum append queue capacity")
	m.queueSize = m.gauge("queue_size", "Current number of pending append jobs")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of append jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of append jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.writerLatency = m.histogram("writer_append_latency_milliseconds", "Time to append and persist one race in milliseconds", m.latencyBuckets)
	m.writerErrors = m.counter("writer_errors_total", "Append jobs the writer failed to persist")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordRaceRecorded counts an appended race.
func RecordRaceRecorded() { globalManager.racesRecorded.Inc() }

// UpdateHistoryRows sets the history size gauge.
func UpdateHistoryRows(n int) { globalManager.historyRows.Set(float64(n)) }

// UpdateActiveGame sets the active game gauge.
func UpdateActiveGame(game int) { globalManager.activeGame.Set(float64(game)) }

// RecordSubmissionDuplicate counts a duplicate submission.
func RecordSubmissionDuplicate() { globalManager.submissionsDup.Inc() }

// RecordSubmissionRejected counts a rejected submission.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// RecordRecommendation counts a served recommendation by strategy.
func RecordRecommendation(source string) error {
	if source == "" {
		return ErrUnknownSource
	}
	globalManager.recommendations.WithLabelValues(source).Inc()
	return nil
}

// UpdatePatternsFound sets the pattern count gauge.
func UpdatePatternsFound(n int) { globalManager.patternsFound.Set(float64(n)) }

// RecordAnalysisLatency observes an analytic operation.
func RecordAnalysisLatency(operation string, latencyMs float64) {
	globalManager.analysisLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreLatency observes a store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError counts a store failure.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueSize sets the pending job gauge.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordWriterLatency observes one append+persist.
func RecordWriterLatency(latencyMs float64) { globalManager.writerLatency.Observe(latencyMs) }

// RecordWriterError counts a failed append job.
func RecordWriterError() { globalManager.writerErrors.Inc() }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an error returned by an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry served at /healthz.
func GetRegistry() *prometheus.Registry { return customRegistry }
