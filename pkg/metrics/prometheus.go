// Package metrics provides Prometheus metrics for the samemean widget server.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the server exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Widget interaction
	pageRenders   prometheus.Counter
	renderLatency prometheus.Histogram
	selections    *prometheus.CounterVec
	toggles       *prometheus.CounterVec
	chartExports  *prometheus.CounterVec

	// Component instances
	sessionsActive  prometheus.Gauge
	sessionsCreated prometheus.Counter

	// Dataset table
	catalogDatasets        prometheus.Gauge
	catalogInconsistencies prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go/process collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "samemean",
		subsystem:        "widget",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.pageRenders = auto.NewCounter(m.counterOpts("page_renders_total",
		"Total number of widget pages rendered"))
	m.renderLatency = auto.NewHistogram(m.histogramOpts("render_latency_milliseconds",
		"Time spent building and executing the page template", m.histogramBuckets))
	m.selections = auto.NewCounterVec(m.counterOpts("selections_total",
		"Dataset selections by dataset id"), []string{"dataset"})
	m.toggles = auto.NewCounterVec(m.counterOpts("toggles_total",
		"Panel toggles by panel and resulting visibility"), []string{"panel", "visible"})
	m.chartExports = auto.NewCounterVec(m.counterOpts("chart_exports_total",
		"Chart images exported by format"), []string{"format"})

	m.sessionsActive = auto.NewGauge(m.gaugeOpts("sessions_active",
		"Widget sessions currently held in memory (including not yet reclaimed expired ones)"))
	m.sessionsCreated = auto.NewCounter(m.counterOpts("sessions_created_total",
		"Widget sessions mounted"))

	m.catalogDatasets = auto.NewGauge(m.gaugeOpts("catalog_datasets",
		"Number of datasets in the loaded registry"))
	m.catalogInconsistencies = auto.NewGauge(m.gaugeOpts("catalog_inconsistencies",
		"Datasets whose authored statistics disagree with the bin-derived ones"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Total number of errors by type"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds",
		"Latency of operations that resulted in errors", m.histogramBuckets), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordPageRender counts a rendered page and its latency.
func RecordPageRender(latencyMs float64) {
	globalManager.pageRenders.Inc()
	globalManager.renderLatency.Observe(latencyMs)
}

// RecordSelection counts a dataset selection.
func RecordSelection(datasetID string) {
	globalManager.selections.WithLabelValues(datasetID).Inc()
}

// RecordToggle counts a panel toggle with the visibility it ended in.
func RecordToggle(panel string, visible bool) {
	globalManager.toggles.WithLabelValues(panel, strconv.FormatBool(visible)).Inc()
}

// RecordChartExport counts an exported chart image.
func RecordChartExport(format string) {
	globalManager.chartExports.WithLabelValues(format).Inc()
}

// RecordSessionCreated counts a mounted widget session.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// UpdateSessionsActive sets the number of sessions held in memory.
func UpdateSessionsActive(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// UpdateCatalogDatasets sets the registry size.
func UpdateCatalogDatasets(count int) {
	globalManager.catalogDatasets.Set(float64(count))
}

// UpdateCatalogInconsistencies sets the number of datasets failing the consistency check.
func UpdateCatalogInconsistencies(count int) {
	globalManager.catalogInconsistencies.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the heap memory usage in bytes.
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

// GetRegistry returns the custom Prometheus registry used by the server.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
