package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/dropzone/pkg/server"
	"github.com/vango-dev/dropzone/pkg/widget"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "dropzone").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "dropzone",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects dropzone metrics. It satisfies server.Observer,
// widget.Observer and upload.Observer.
type Metrics struct {
	registry prometheus.Registerer

	eventsTotal      *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec
	eventErrors      *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	decodes          *prometheus.CounterVec
	patchesSent      prometheus.Counter
	activeSessions   prometheus.Gauge
	uploadsStaged    prometheus.Counter
	uploadsSubmitted prometheus.Counter
	uploadBytes      prometheus.Histogram
	uploadFailures   *prometheus.CounterVec
}

// NewMetrics registers the dropzone metrics.
//
// Metrics collected:
//   - dropzone_events_total: widget events by event and status
//   - dropzone_event_duration_seconds: event handling duration
//   - dropzone_event_errors_total: event errors by event and error type
//   - dropzone_rejections_total: validation rejections by reason
//   - dropzone_decodes_total: preview decodes by outcome
//   - dropzone_patches_sent_total: patches sent to clients
//   - dropzone_active_sessions: open WebSocket sessions
//   - dropzone_uploads_staged_total, dropzone_uploads_submitted_total
//   - dropzone_upload_size_bytes: size of accepted uploads
//   - dropzone_upload_failures_total: upload failures by stage and reason
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of widget events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Widget event processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		eventErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_errors_total",
			Help:        "Total number of widget event errors",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "error_type"}),

		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rejections_total",
			Help:        "Total number of files or submissions rejected by validation",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		decodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decodes_total",
			Help:        "Total number of preview decodes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		uploadsStaged: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uploads_staged_total",
			Help:        "Total number of files staged for preview",
			ConstLabels: config.ConstLabels,
		}),

		uploadsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uploads_submitted_total",
			Help:        "Total number of uploads accepted on submission",
			ConstLabels: config.ConstLabels,
		}),

		uploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_size_bytes",
			Help:        "Size of accepted uploads in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{10240, 102400, 1048576, 5242880, 10485760}, // 10KB to 10MB
		}),

		uploadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_failures_total",
			Help:        "Total number of failed stage or submit requests",
			ConstLabels: config.ConstLabels,
		}, []string{"stage", "reason"}),
	}
}

// Middleware returns session middleware that times and counts events.
func (m *Metrics) Middleware() server.Middleware {
	return server.MiddlewareFunc(func(ec *server.EventContext, next func() error) error {
		event := eventName(ec)
		start := time.Now()

		err := next()

		m.eventDuration.WithLabelValues(event).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
			m.eventErrors.WithLabelValues(event, categorizeError(err)).Inc()
		}
		m.eventsTotal.WithLabelValues(event, status).Inc()
		return err
	})
}

// Handler serves the metrics of the configured registry.
func (m *Metrics) Handler() http.Handler {
	if g, ok := m.registry.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// SessionOpened implements server.Observer.
func (m *Metrics) SessionOpened() { m.activeSessions.Inc() }

// SessionClosed implements server.Observer.
func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }

// PatchesSent implements server.Observer.
func (m *Metrics) PatchesSent(n int) { m.patchesSent.Add(float64(n)) }

// Rejected implements widget.Observer.
func (m *Metrics) Rejected(reason widget.Reason) {
	m.rejections.WithLabelValues(reason.String()).Inc()
}

// Decoded implements widget.Observer.
func (m *Metrics) Decoded(outcome widget.DecodeOutcome) {
	m.decodes.WithLabelValues(string(outcome)).Inc()
}

// UploadStaged implements upload.Observer.
func (m *Metrics) UploadStaged(int64) { m.uploadsStaged.Inc() }

// UploadSubmitted implements upload.Observer.
func (m *Metrics) UploadSubmitted(size int64) {
	m.uploadsSubmitted.Inc()
	m.uploadBytes.Observe(float64(size))
}

// UploadFailed implements upload.Observer.
func (m *Metrics) UploadFailed(stage, reason string) {
	m.uploadFailures.WithLabelValues(stage, reason).Inc()
}

// eventName is the low-cardinality label for an event.
func eventName(ec *server.EventContext) string {
	if ec == nil || ec.Event == nil {
		return "unknown"
	}
	return strings.ToLower(ec.Event.Type.String())
}

// categorizeError keeps error labels low-cardinality.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, server.ErrHandlerNotFound):
		return "not_found"
	case errors.Is(err, server.ErrHandlerPanic):
		return "panic"
	case errors.Is(err, server.ErrEventQueueFull):
		return "rate_limit"
	case errors.Is(err, server.ErrSessionClosed):
		return "closed"
	default:
		return "internal"
	}
}
