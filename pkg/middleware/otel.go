package middleware

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/dropzone/pkg/server"
)

// Default tracer name.
const defaultTracerName = "dropzone"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "dropzone").
	TracerName string

	// TracerProvider overrides the global provider when set.
	TracerProvider trace.TracerProvider

	// Filter determines which events to trace.
	// Return true to trace the event, false to skip.
	// If nil, all events are traced.
	Filter func(ec *server.EventContext) bool

	// AttributeExtractor extracts custom attributes from the event.
	AttributeExtractor func(ec *server.EventContext) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ec *server.EventContext) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ec *server.EventContext) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every widget event.
//
// The middleware:
//   - Creates a span per event named "dropzone.<event>" with the session ID,
//     event type and target
//   - Replaces EventContext.Context with the span's context
//   - Records errors and sets span status
//   - Records the patch count as a span attribute
func OpenTelemetry(opts ...OTelOption) server.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return server.MiddlewareFunc(func(ec *server.EventContext, next func() error) error {
		if config.Filter != nil && !config.Filter(ec) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("dropzone.session_id", ec.SessionID),
		}
		if ec.Event != nil {
			attrs = append(attrs,
				attribute.String("dropzone.event_type", ec.Event.Type.String()),
				attribute.String("dropzone.event_target", ec.Event.Target),
				attribute.Int("dropzone.file_count", len(ec.Event.Files)),
			)
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ec)...)
		}

		parent := ec.Context
		if parent == nil {
			parent = context.Background()
		}
		spanCtx, span := tracer.Start(
			parent,
			spanName(ec),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()

		ec.Context = context.WithValue(spanCtx, spanContextKey{}, spanCtx)
		defer func() { ec.Context = parent }()

		err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.SetAttributes(attribute.Int("dropzone.patch_count", ec.Patches))

		return err
	})
}

// spanContextKey marks contexts created by the middleware.
type spanContextKey struct{}

// SpanFromContext returns the event span started by OpenTelemetry, or nil
// when ctx was not derived from one.
func SpanFromContext(ctx context.Context) trace.Span {
	if ctx == nil {
		return nil
	}
	if spanCtx, ok := ctx.Value(spanContextKey{}).(context.Context); ok {
		return trace.SpanFromContext(spanCtx)
	}
	return nil
}

func spanName(ec *server.EventContext) string {
	if ec.Event == nil {
		return "dropzone.event"
	}
	return "dropzone." + strings.ToLower(ec.Event.Type.String())
}
