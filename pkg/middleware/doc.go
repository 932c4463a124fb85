// Package middleware provides observability for dropzone servers.
//
// This package includes:
//   - Prometheus metrics for widget events, validation outcomes, sessions
//     and uploads
//   - OpenTelemetry tracing of widget events
//
// # Prometheus Metrics
//
// Metrics implements the observer interfaces of the server, widget and
// upload packages, and wraps every session event through Middleware:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("dropzone"))
//	cfg := &server.ServerConfig{
//	    Middleware:     []server.Middleware{m.Middleware()},
//	    Observer:       m,
//	    WidgetObserver: m,
//	}
//	srv := server.New(cfg, logger)
//	srv.Router().Handle("/metrics", m.Handler())
//
// # OpenTelemetry Middleware
//
// OpenTelemetry starts one span per widget event, named after the event
// ("dropzone.drop", "dropzone.submit"), and makes the span's context
// available to the handler through EventContext.Context:
//
//	cfg.Middleware = append(cfg.Middleware, middleware.OpenTelemetry())
//
// The tracer comes from the global provider; configure it with
// otel.SetTracerProvider before starting the server.
package middleware
