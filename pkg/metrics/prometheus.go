// Package metrics provides Prometheus metrics for the heatboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest metrics
	fetches         prometheus.Counter
	fetchErrors     prometheus.Counter
	rowsSkipped     prometheus.Counter
	submissionsSeen prometheus.Gauge

	// Derivation metrics
	refreshes      prometheus.Counter
	branchErrors   *prometheus.CounterVec
	deriveDuration *prometheus.HistogramVec
	trackedUsers   prometheus.Gauge
	timeBins       prometheus.Gauge

	// Snapshot metrics
	snapshotChunks      prometheus.Gauge
	snapshotBytes       prometheus.Gauge
	snapshotReadMisses  prometheus.Counter
	snapshotWriteErrors prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "heatboard",
		subsystem:        "standings",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sheet_fetches_total",
		Help:      "Total number of spreadsheet fetch attempts.",
	})
	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sheet_fetch_errors_total",
		Help:      "Total number of failed spreadsheet fetches.",
	})
	m.rowsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sheet_rows_skipped_total",
		Help:      "Total number of malformed sheet rows skipped at ingest.",
	})
	m.submissionsSeen = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_seen",
		Help:      "Number of submissions in the last ingested set.",
	})

	m.refreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refreshes_total",
		Help:      "Total number of derivation runs.",
	})
	m.branchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "branch_errors_total",
		Help:      "Total number of derivation branch failures.",
	}, []string{"branch"})
	m.deriveDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "derive_duration_ms",
		Help:      "Derivation branch duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"branch"})
	m.trackedUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_users",
		Help:      "Number of users in the current standings.",
	})
	m.timeBins = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "time_bins",
		Help:      "Number of elapsed-hour bins in the current series.",
	})

	m.snapshotChunks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_chunks",
		Help:      "Chunk count of the last written standings snapshot.",
	})
	m.snapshotBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_bytes",
		Help:      "Serialized size of the last written standings snapshot.",
	})
	m.snapshotReadMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_read_misses_total",
		Help:      "Total number of snapshot reads that fell back to empty.",
	})
	m.snapshotWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_write_errors_total",
		Help:      "Total number of failed snapshot writes.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method", "status_code"})
}

// RecordFetch increments the sheet fetch counter.
func RecordFetch() {
	globalManager.fetches.Inc()
}

// RecordFetchError increments the failed fetch counter.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// RecordRowSkipped increments the malformed-row counter.
func RecordRowSkipped() {
	globalManager.rowsSkipped.Inc()
}

// UpdateSubmissionsSeen sets the size of the last ingested set.
func UpdateSubmissionsSeen(count int) {
	globalManager.submissionsSeen.Set(float64(count))
}

// RecordRefresh increments the derivation run counter.
func RecordRefresh() {
	globalManager.refreshes.Inc()
}

// RecordBranchError increments the failure counter for a derivation branch.
func RecordBranchError(branch string) {
	globalManager.branchErrors.WithLabelValues(branch).Inc()
}

// RecordDeriveDuration records a derivation branch duration in milliseconds.
func RecordDeriveDuration(branch string, durationMs float64) {
	globalManager.deriveDuration.WithLabelValues(branch).Observe(durationMs)
}

// UpdateTrackedUsers sets the current standings size.
func UpdateTrackedUsers(count int) {
	globalManager.trackedUsers.Set(float64(count))
}

// UpdateTimeBins sets the current series bin count.
func UpdateTimeBins(count int) {
	globalManager.timeBins.Set(float64(count))
}

// UpdateSnapshotChunks sets the chunk count of the last written snapshot.
func UpdateSnapshotChunks(count int) {
	globalManager.snapshotChunks.Set(float64(count))
}

// UpdateSnapshotBytes sets the serialized size of the last written snapshot.
func UpdateSnapshotBytes(size int) {
	globalManager.snapshotBytes.Set(float64(size))
}

// RecordSnapshotReadMiss increments the empty-fallback read counter.
func RecordSnapshotReadMiss() {
	globalManager.snapshotReadMisses.Inc()
}

// RecordSnapshotWriteError increments the failed snapshot write counter.
func RecordSnapshotWriteError() {
	globalManager.snapshotWriteErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
