package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/server"
)

type startedSpan struct {
	name  string
	attrs []attribute.KeyValue
}

// recordingProvider records the spans its tracer starts.
type recordingProvider struct {
	noop.TracerProvider
	spans *[]startedSpan
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{spans: p.spans}
}

type recordingTracer struct {
	noop.Tracer
	spans *[]startedSpan
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	*t.spans = append(*t.spans, startedSpan{name: name, attrs: cfg.Attributes()})
	return t.Tracer.Start(ctx, name, opts...)
}

func hasAttr(attrs []attribute.KeyValue, key, value string) bool {
	for _, a := range attrs {
		if string(a.Key) == key && a.Value.Emit() == value {
			return true
		}
	}
	return false
}

func TestOpenTelemetryMiddleware_StartsEventSpan(t *testing.T) {
	var spans []startedSpan
	mw := OpenTelemetry(
		WithTracerProvider(recordingProvider{spans: &spans}),
		WithAttributeExtractor(func(*server.EventContext) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)

	ec := &server.EventContext{
		Context:   context.Background(),
		SessionID: "sess-1",
		Event:     &protocol.Event{Type: protocol.EventDrop, Target: "dz"},
	}
	err := mw.Handle(ec, func() error {
		if SpanFromContext(ec.Context) == nil {
			t.Fatal("expected SpanFromContext to return a span during execution")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].name != "dropzone.drop" {
		t.Fatalf("span name = %q, want %q", spans[0].name, "dropzone.drop")
	}
	for key, value := range map[string]string{
		"dropzone.session_id":   "sess-1",
		"dropzone.event_type":   "Drop",
		"dropzone.event_target": "dz",
		"test.attr":             "ok",
	} {
		if !hasAttr(spans[0].attrs, key, value) {
			t.Errorf("span missing attribute %s=%s", key, value)
		}
	}
	if SpanFromContext(ec.Context) != nil {
		t.Fatal("EventContext.Context was not restored after the event")
	}
}

func TestOpenTelemetryMiddleware_ErrorPropagates(t *testing.T) {
	var spans []startedSpan
	mw := OpenTelemetry(WithTracerProvider(recordingProvider{spans: &spans}))

	wantErr := errors.New("boom")
	err := mw.Handle(&server.EventContext{Event: &protocol.Event{Type: protocol.EventSubmit, Target: "dz-form"}},
		func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if len(spans) != 1 || spans[0].name != "dropzone.submit" {
		t.Fatalf("spans = %+v, want one dropzone.submit span", spans)
	}
}

func TestOpenTelemetryMiddleware_FilterSkips(t *testing.T) {
	var spans []startedSpan
	mw := OpenTelemetry(
		WithTracerProvider(recordingProvider{spans: &spans}),
		WithEventFilter(func(ec *server.EventContext) bool {
			return ec.Event.Type != protocol.EventDragOver
		}),
	)

	called := false
	_ = mw.Handle(newEventContext(protocol.EventDragOver, "dz"), func() error {
		called = true
		return nil
	})
	if !called {
		t.Fatal("filtered event did not reach the handler")
	}
	if len(spans) != 0 {
		t.Fatalf("spans = %d, want 0 for filtered event", len(spans))
	}
}

func TestSpanFromContext_Absent(t *testing.T) {
	if SpanFromContext(context.Background()) != nil {
		t.Fatal("SpanFromContext(background) != nil")
	}
	if SpanFromContext(nil) != nil {
		t.Fatal("SpanFromContext(nil) != nil")
	}
}
