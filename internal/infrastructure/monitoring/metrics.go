package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

const namespace = "uilayers"

// Metrics holds all Prometheus metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// UI metrics
	UIOpened            *prometheus.CounterVec
	UIClosed            *prometheus.CounterVec
	UIPaused            *prometheus.CounterVec
	UIResumed           *prometheus.CounterVec
	ConstructFailures   *prometheus.CounterVec
	ExclusiveOccupied   prometheus.Gauge
	PanelDepth          prometheus.Gauge
	OverlaysOpen        prometheus.Gauge
	RegistryTemplates   prometheus.Gauge
	FrameWorkDuration   prometheus.Histogram
	FrameJobs           prometheus.Histogram
	ScheduledTasks      prometheus.Gauge
	CatalogReloadsTotal *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
	ActiveConnections int64   `json:"active_connections"`
	Opened            int64   `json:"ui_opened"`
	Closed            int64   `json:"ui_closed"`
	ConstructFailures int64   `json:"construct_failures"`
	PanelDepth        int64   `json:"panel_depth"`
	Overlays          int64   `json:"overlays"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// UI metrics
		UIOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ui_opened_total",
				Help:      "UI instances opened",
			},
			[]string{"layer", "tag"},
		),
		UIClosed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ui_closed_total",
				Help:      "UI instances closed",
			},
			[]string{"layer", "tag"},
		),
		UIPaused: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ui_paused_total",
				Help:      "Panel pauses",
			},
			[]string{"tag"},
		),
		UIResumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ui_resumed_total",
				Help:      "Panel resumes",
			},
			[]string{"tag"},
		),
		ConstructFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ui_construct_failures_total",
				Help:      "Opens that failed because no template could be constructed",
			},
			[]string{"layer", "tag"},
		),
		ExclusiveOccupied: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ui_exclusive_occupied",
				Help:      "1 when the exclusive slot is occupied",
			},
		),
		PanelDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ui_panel_depth",
				Help:      "Number of panels on the stack",
			},
		),
		OverlaysOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ui_overlays_open",
				Help:      "Number of open overlays",
			},
		),
		RegistryTemplates: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registry_templates",
				Help:      "Number of registered templates",
			},
		),
		FrameWorkDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_work_seconds",
				Help:      "Time spent ticking the scheduler per frame",
				Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .016, .033},
			},
		),
		FrameJobs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_jobs",
				Help:      "Manager jobs run between two frames",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		ScheduledTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "frame_scheduled_tasks",
				Help:      "Pending scheduler tasks",
			},
		),
		CatalogReloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Catalog loads by outcome",
			},
			[]string{"status"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active stream connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of stream messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Host uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the private Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOpen implements ui.Recorder
func (m *Metrics) RecordOpen(layer types.Layer, tag string) {
	m.UIOpened.WithLabelValues(string(layer), tag).Inc()
	m.mu.Lock()
	m.snapshot.Opened++
	m.mu.Unlock()
}

// RecordClose implements ui.Recorder
func (m *Metrics) RecordClose(layer types.Layer, tag string) {
	m.UIClosed.WithLabelValues(string(layer), tag).Inc()
	m.mu.Lock()
	m.snapshot.Closed++
	m.mu.Unlock()
}

// RecordPause implements ui.Recorder
func (m *Metrics) RecordPause(tag string) {
	m.UIPaused.WithLabelValues(tag).Inc()
}

// RecordResume implements ui.Recorder
func (m *Metrics) RecordResume(tag string) {
	m.UIResumed.WithLabelValues(tag).Inc()
}

// RecordConstructFailure implements ui.Recorder
func (m *Metrics) RecordConstructFailure(layer types.Layer, tag string) {
	m.ConstructFailures.WithLabelValues(string(layer), tag).Inc()
	m.mu.Lock()
	m.snapshot.ConstructFailures++
	m.mu.Unlock()
}

// SetOccupancy implements ui.Recorder
func (m *Metrics) SetOccupancy(exclusive bool, panels, overlays int) {
	occupied := 0.0
	if exclusive {
		occupied = 1
	}
	m.ExclusiveOccupied.Set(occupied)
	m.PanelDepth.Set(float64(panels))
	m.OverlaysOpen.Set(float64(overlays))

	m.mu.Lock()
	m.snapshot.PanelDepth = int64(panels)
	m.snapshot.Overlays = int64(overlays)
	m.mu.Unlock()
}

// RecordFrame implements frame.Recorder
func (m *Metrics) RecordFrame(work time.Duration, jobs int) {
	m.FrameWorkDuration.Observe(work.Seconds())
	m.FrameJobs.Observe(float64(jobs))
}

// SetScheduledTasks implements frame.Recorder
func (m *Metrics) SetScheduledTasks(n int) {
	m.ScheduledTasks.Set(float64(n))
}

// SetRegistryTemplates sets the number of registered templates
func (m *Metrics) SetRegistryTemplates(count int) {
	m.RegistryTemplates.Set(float64(count))
}

// RecordCatalogReload records a catalog load outcome
func (m *Metrics) RecordCatalogReload(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CatalogReloadsTotal.WithLabelValues(status).Inc()
}

// RecordWSMessage records a stream message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments stream connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements stream connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.TotalRequests > 0 {
		snap.AvgLatencyMS = snap.totalDuration / float64(snap.TotalRequests) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
