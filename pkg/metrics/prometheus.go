// Package metrics provides Prometheus metrics for the scoreboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric the service records.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Aggregation metrics
	snapshotsApplied  *prometheus.CounterVec
	rebuildDuration   prometheus.Histogram
	recordsAggregated prometheus.Gauge
	recordsDropped    prometheus.Counter
	malformedPoints   prometheus.Counter

	// Feed metrics
	feedSubscribers *prometheus.GaugeVec
	feedErrors      *prometheus.CounterVec
	feedCoalesced   prometheus.Counter

	// Animation metrics
	scrollReversals  *prometheus.CounterVec
	carouselAdvances *prometheus.CounterVec

	// Transport metrics
	wsClients           *prometheus.GaugeVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swaralaya",
		subsystem:        "scoreboard",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.snapshotsApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_applied_total",
		Help:      "Total feed snapshots applied to a view model, by collection",
	}, []string{"collection"})

	m.rebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_rebuild_duration_milliseconds",
		Help:      "Histogram of full standings rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recordsAggregated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_aggregated",
		Help:      "Number of score records in the last applied snapshot",
	})

	m.recordsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_dropped_total",
		Help:      "Total records dropped for an unrecognized house or category",
	})

	m.malformedPoints = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "malformed_points_total",
		Help:      "Total records whose points value could not be parsed as a number",
	})

	m.feedSubscribers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_subscribers",
		Help:      "Current feed subscribers, by collection",
	}, []string{"collection"})

	m.feedErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_errors_total",
		Help:      "Total transport errors reported on a feed, by collection",
	}, []string{"collection"})

	m.feedCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_snapshots_coalesced_total",
		Help:      "Total intermediate snapshots skipped by slow subscribers",
	})

	m.scrollReversals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scroll_reversals_total",
		Help:      "Total auto-scroll direction reversals, by cause (bound or stall)",
	}, []string{"cause"})

	m.carouselAdvances = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "carousel_advances_total",
		Help:      "Total carousel index changes, by source (auto or manual)",
	}, []string{"source"})

	m.wsClients = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_clients",
		Help:      "Connected WebSocket display clients, by view",
	}, []string{"view"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the registry metrics are collected into, for serving
// via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording on the global manager.

func RecordSnapshotApplied(collection string) {
	globalManager.snapshotsApplied.WithLabelValues(collection).Inc()
}

func RecordRebuildDuration(ms float64) {
	globalManager.rebuildDuration.Observe(ms)
}

func UpdateRecordsAggregated(n int) {
	globalManager.recordsAggregated.Set(float64(n))
}

func RecordRecordDropped() {
	globalManager.recordsDropped.Inc()
}

func RecordMalformedPoints() {
	globalManager.malformedPoints.Inc()
}

func UpdateFeedSubscribers(collection string, n int) {
	globalManager.feedSubscribers.WithLabelValues(collection).Set(float64(n))
}

func RecordFeedError(collection string) {
	globalManager.feedErrors.WithLabelValues(collection).Inc()
}

func RecordSnapshotCoalesced() {
	globalManager.feedCoalesced.Inc()
}

func RecordScrollReversal(cause string) {
	globalManager.scrollReversals.WithLabelValues(cause).Inc()
}

func RecordCarouselAdvance(source string) {
	globalManager.carouselAdvances.WithLabelValues(source).Inc()
}

func UpdateWSClients(view string, n int) {
	globalManager.wsClients.WithLabelValues(view).Set(float64(n))
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}
