// Package metrics provides Prometheus metrics for the fideboard rankings service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Rankings queries
	queries        *prometheus.CounterVec
	queryLatency   *prometheus.HistogramVec
	queryErrors    *prometheus.CounterVec
	rankedPlayers  prometheus.Gauge
	listsAvailable prometheus.Gauge

	// Ingest
	snapshotsIngested   prometheus.Counter
	ratingsIngested     *prometheus.CounterVec
	ingestSkipped       *prometheus.CounterVec
	indexRebuildLatency prometheus.Histogram
	lastIngestUnix      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fideboard",
		subsystem:        "rankings",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.queries = auto.NewCounterVec(
		m.counterOpts("queries_total", "Rankings page queries by sort field and order"),
		[]string{"store", "sort", "order"},
	)
	m.queryLatency = auto.NewHistogramVec(
		m.histogramOpts("query_latency_milliseconds", "Rankings page query latency in milliseconds"),
		[]string{"store"},
	)
	m.queryErrors = auto.NewCounterVec(
		m.counterOpts("query_errors_total", "Rankings page queries that failed"),
		[]string{"store", "reason"},
	)
	m.rankedPlayers = auto.NewGauge(m.gaugeOpts("ranked_players", "Players present in the latest rating list"))
	m.listsAvailable = auto.NewGauge(m.gaugeOpts("rating_lists", "Monthly rating lists held by the store"))

	m.snapshotsIngested = auto.NewCounter(m.counterOpts("snapshots_ingested_total", "Rating lists ingested"))
	m.ratingsIngested = auto.NewCounterVec(
		m.counterOpts("ratings_ingested_total", "Rating entries stored by data source"),
		[]string{"source"},
	)
	m.ingestSkipped = auto.NewCounterVec(
		m.counterOpts("ingest_skipped_total", "Rating list lines skipped while parsing or storing"),
		[]string{"reason"},
	)
	m.indexRebuildLatency = auto.NewHistogram(
		m.histogramOpts("index_rebuild_duration_milliseconds", "In-memory sort index rebuild duration in milliseconds"),
	)
	m.lastIngestUnix = auto.NewGauge(m.gaugeOpts("last_ingest_unix", "Unix timestamp of the last successful ingest"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordQuery counts one rankings query.
func RecordQuery(store, sort, order string) {
	globalManager.queries.WithLabelValues(store, sort, order).Inc()
}

// RecordQueryLatency records rankings query latency in milliseconds.
func RecordQueryLatency(store string, latencyMs float64) {
	globalManager.queryLatency.WithLabelValues(store).Observe(latencyMs)
}

// RecordQueryError counts a failed rankings query.
func RecordQueryError(store, reason string) {
	globalManager.queryErrors.WithLabelValues(store, reason).Inc()
}

// UpdateRankedPlayers sets the size of the latest list.
func UpdateRankedPlayers(count int) {
	globalManager.rankedPlayers.Set(float64(count))
}

// UpdateRatingLists sets the number of monthly lists held.
func UpdateRatingLists(count int) {
	globalManager.listsAvailable.Set(float64(count))
}

// RecordSnapshotIngested counts one ingested list and stamps the ingest time.
func RecordSnapshotIngested(unix int64) {
	globalManager.snapshotsIngested.Inc()
	globalManager.lastIngestUnix.Set(float64(unix))
}

// RecordRatingsIngested adds stored rating entries for a data source.
func RecordRatingsIngested(source string, n int) {
	globalManager.ratingsIngested.WithLabelValues(source).Add(float64(n))
}

// RecordIngestSkipped adds skipped lines for a reason.
func RecordIngestSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.ingestSkipped.WithLabelValues(reason).Add(float64(n))
}

// RecordIndexRebuild records an in-memory index rebuild in milliseconds.
func RecordIndexRebuild(latencyMs float64) {
	globalManager.indexRebuildLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the collectors are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
