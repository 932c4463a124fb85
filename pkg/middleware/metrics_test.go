package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/server"
	"github.com/vango-dev/dropzone/pkg/widget"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func newEventContext(et protocol.EventType, target string) *server.EventContext {
	return &server.EventContext{
		SessionID: "sess-1",
		Event:     &protocol.Event{Type: et, Target: target},
	}
}

// Compile-time checks that Metrics serves every observer hook.
var (
	_ server.Observer = (*Metrics)(nil)
	_ widget.Observer = (*Metrics)(nil)
)

func TestMetricsMiddleware_RecordsSuccessAndError(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	mw := m.Middleware()

	if err := mw.Handle(newEventContext(protocol.EventDrop, "dz"), func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantErr := fmt.Errorf("route: %w", server.ErrHandlerNotFound)
	err := mw.Handle(newEventContext(protocol.EventSubmit, "nope"), func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}

	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("drop", "success")); got != 1 {
		t.Fatalf("events_total(drop, success)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("submit", "error")); got != 1 {
		t.Fatalf("events_total(submit, error)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.eventErrors.WithLabelValues("submit", "not_found")); got != 1 {
		t.Fatalf("event_errors_total(submit, not_found)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.eventDuration.WithLabelValues("drop")); got != 1 {
		t.Fatalf("event_duration_seconds(drop) count=%v, want 1", got)
	}
}

func TestMetrics_Observers(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.PatchesSent(3)
	m.PatchesSent(2)
	m.Rejected(widget.ReasonInvalidType)
	m.Rejected(widget.ReasonTooLarge)
	m.Rejected(widget.ReasonTooLarge)
	m.Decoded(widget.DecodeOK)
	m.Decoded(widget.DecodeStale)
	m.UploadStaged(1024)
	m.UploadSubmitted(2048)
	m.UploadFailed("submit", "invalid_content")

	if got := metricGaugeValue(t, m.activeSessions); got != 1 {
		t.Fatalf("active_sessions=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.patchesSent); got != 5 {
		t.Fatalf("patches_sent_total=%v, want 5", got)
	}
	if got := metricCounterValue(t, m.rejections.WithLabelValues(widget.ReasonTooLarge.String())); got != 2 {
		t.Fatalf("rejections_total(too large)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.decodes.WithLabelValues("stale")); got != 1 {
		t.Fatalf("decodes_total(stale)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.uploadsStaged); got != 1 {
		t.Fatalf("uploads_staged_total=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.uploadsSubmitted); got != 1 {
		t.Fatalf("uploads_submitted_total=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.uploadBytes); got != 1 {
		t.Fatalf("upload_size_bytes count=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.uploadFailures.WithLabelValues("submit", "invalid_content")); got != 1 {
		t.Fatalf("upload_failures_total=%v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("dztest"))
	m.SessionOpened()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rr.Body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(string(body), "dztest_active_sessions 1") {
		t.Fatalf("metrics output missing active sessions:\n%s", body)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{server.ErrHandlerNotFound, "not_found"},
		{fmt.Errorf("%w: boom", server.ErrHandlerPanic), "panic"},
		{server.ErrEventQueueFull, "rate_limit"},
		{server.ErrSessionClosed, "closed"},
		{errors.New("something else"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
