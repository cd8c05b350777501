// Package metrics provides Prometheus metrics for the perfect circle service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// scoreBuckets cover the 0..100 score range in steps of ten.
var scoreBuckets = prometheus.LinearBuckets(10, 10, 10) //nolint:gochecknoglobals // static bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Scoring
	strokesScored       prometheus.Counter
	strokesInsufficient prometheus.Counter
	strokePoints        prometheus.Histogram
	scores              prometheus.Histogram
	subScores           *prometheus.HistogramVec
	highScores          prometheus.Counter
	scoringLatency      prometheus.Histogram

	// Capture sessions
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	sessionFrames  *prometheus.CounterVec
	sessionDropped prometheus.Counter

	// Notifications
	notificationsEnqueued prometheus.Counter
	notificationsSent     prometheus.Counter
	notificationsFailed   prometheus.Counter
	notificationsDropped  prometheus.Counter

	// Sharing
	shares *prometheus.CounterVec

	// Webhooks
	webhooksReceived  *prometheus.CounterVec
	webhooksDuplicate prometheus.Counter

	// Cards
	cardsRendered prometheus.Counter
	cardLatency   prometheus.Histogram
	cardErrors    prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "perfectcircle",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge updaters should poll.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	lat := m.histogramBuckets

	m.strokesScored = auto.NewCounter(m.counter("strokes_scored_total", "Strokes that produced a score"))
	m.strokesInsufficient = auto.NewCounter(m.counter("strokes_insufficient_total", "Strokes rejected for too few samples"))
	m.strokePoints = auto.NewHistogram(m.histogram("stroke_points", "Samples per completed stroke",
		prometheus.ExponentialBuckets(8, 2, 10)))
	m.scores = auto.NewHistogram(m.histogram("score", "Composite circularity score", scoreBuckets))
	m.subScores = auto.NewHistogramVec(m.histogram("sub_score", "Sub-score by component", scoreBuckets),
		[]string{"component"})
	m.highScores = auto.NewCounter(m.counter("high_scores_total", "Scores at or above the notification threshold"))
	m.scoringLatency = auto.NewHistogram(m.histogram("scoring_latency_milliseconds", "Time spent in the scorer", lat))

	m.sessionsActive = auto.NewGauge(m.gauge("sessions_active", "Open live capture sessions"))
	m.sessionsTotal = auto.NewCounter(m.counter("sessions_total", "Live capture sessions opened"))
	m.sessionFrames = auto.NewCounterVec(m.counter("session_frames_total", "Capture frames by type"),
		[]string{"type"})
	m.sessionDropped = auto.NewCounter(m.counter("session_frames_dropped_total", "Capture frames dropped by the rate limiter"))

	m.notificationsEnqueued = auto.NewCounter(m.counter("notifications_enqueued_total", "High-score notifications queued"))
	m.notificationsSent = auto.NewCounter(m.counter("notifications_sent_total", "Notifications delivered"))
	m.notificationsFailed = auto.NewCounter(m.counter("notifications_failed_total", "Notifications that failed delivery"))
	m.notificationsDropped = auto.NewCounter(m.counter("notifications_dropped_total", "Notifications dropped on backpressure"))

	m.shares = auto.NewCounterVec(m.counter("shares_total", "Share requests by kind and outcome"),
		[]string{"kind", "outcome"})

	m.webhooksReceived = auto.NewCounterVec(m.counter("webhooks_received_total", "Webhook callbacks by event type"),
		[]string{"type"})
	m.webhooksDuplicate = auto.NewCounter(m.counter("webhooks_duplicate_total", "Webhook callbacks seen before"))

	m.cardsRendered = auto.NewCounter(m.counter("cards_rendered_total", "Share cards rendered"))
	m.cardLatency = auto.NewHistogram(m.histogram("card_render_milliseconds", "Share card render time", lat))
	m.cardErrors = auto.NewCounter(m.counter("card_errors_total", "Share card render failures"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration", lat),
		[]string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Notification jobs waiting"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Notification queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization", "Notification queue fill ratio"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Jobs accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Jobs handed to workers"))
	m.queueRejected = auto.NewCounterVec(m.counter("queue_rejected_total", "Jobs rejected by reason"),
		[]string{"reason"})

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Notification workers running"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_milliseconds", "Per-job worker time", lat))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Worker job failures"))

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counter("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "HTTP errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines", "Goroutines running"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_milliseconds", "Average GC pause", lat))
}

// Scoring.

// RecordStrokeScored records a scored stroke with its composite score,
// sub-scores and sample count.
func RecordStrokeScored(score int, circularity, perimeter, closure float64, points int) {
	if !globalManager.enabled {
		return
	}
	globalManager.strokesScored.Inc()
	globalManager.scores.Observe(float64(score))
	globalManager.subScores.WithLabelValues("circularity").Observe(circularity)
	globalManager.subScores.WithLabelValues("perimeter").Observe(perimeter)
	globalManager.subScores.WithLabelValues("closure").Observe(closure)
	globalManager.strokePoints.Observe(float64(points))
}

// RecordStrokeInsufficient records a stroke rejected for too few samples.
func RecordStrokeInsufficient(points int) {
	if !globalManager.enabled {
		return
	}
	globalManager.strokesInsufficient.Inc()
	globalManager.strokePoints.Observe(float64(points))
}

// RecordHighScore records a score at or above the notification threshold.
func RecordHighScore() { globalManager.highScores.Inc() }

// RecordScoringLatency records scorer time in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// Sessions.

// SessionOpened increments the live session gauges.
func SessionOpened() {
	globalManager.sessionsActive.Inc()
	globalManager.sessionsTotal.Inc()
}

// SessionClosed decrements the active session gauge.
func SessionClosed() { globalManager.sessionsActive.Dec() }

// RecordSessionFrame counts a capture frame by type.
func RecordSessionFrame(frameType string) { globalManager.sessionFrames.WithLabelValues(frameType).Inc() }

// RecordSessionFrameDropped counts a frame dropped by the rate limiter.
func RecordSessionFrameDropped() { globalManager.sessionDropped.Inc() }

// Notifications.

// RecordNotificationEnqueued counts a queued notification.
func RecordNotificationEnqueued() { globalManager.notificationsEnqueued.Inc() }

// RecordNotificationSent counts a delivered notification.
func RecordNotificationSent() { globalManager.notificationsSent.Inc() }

// RecordNotificationFailed counts a failed notification.
func RecordNotificationFailed() { globalManager.notificationsFailed.Inc() }

// RecordNotificationDropped counts a notification dropped on backpressure.
func RecordNotificationDropped() { globalManager.notificationsDropped.Inc() }

// RecordShare counts a share attempt by kind ("score", "challenge") and
// outcome ("shared", "fallback").
func RecordShare(kind, outcome string) { globalManager.shares.WithLabelValues(kind, outcome).Inc() }

// Webhooks.

// RecordWebhookReceived counts a webhook callback by event type.
func RecordWebhookReceived(eventType string) {
	if eventType == "" {
		eventType = "unknown"
	}
	globalManager.webhooksReceived.WithLabelValues(eventType).Inc()
}

// RecordWebhookDuplicate counts a repeated webhook callback.
func RecordWebhookDuplicate() { globalManager.webhooksDuplicate.Inc() }

// Cards.

// RecordCardRendered counts a rendered card and its latency.
func RecordCardRendered(latencyMs float64) {
	globalManager.cardsRendered.Inc()
	globalManager.cardLatency.Observe(latencyMs)
}

// RecordCardError counts a card render failure.
func RecordCardError() { globalManager.cardErrors.Inc() }

// HTTP.

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue.

// UpdateQueueSize sets the queue length gauge.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueRejected counts a rejected job by reason.
func RecordQueueRejected(reason string) { globalManager.queueRejected.WithLabelValues(reason).Inc() }

// Workers.

// UpdateWorkerCount sets the running worker gauge.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records per-job worker time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// Errors.

// RecordErrorByComponent records an error by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
