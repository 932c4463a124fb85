// Package server runs upload widgets as server-driven sessions.
//
// Each browser page opens one WebSocket. The server creates a Session for
// it that owns exactly one widget.UploadWidget and three goroutines:
//
//	ReadLoop   decodes frames and queues events
//	EventLoop  runs event handlers and dispatched callbacks one at a time
//	WriteLoop  sends heartbeats
//
// All widget methods run on the EventLoop goroutine. The widget's preview
// decode runs on its own goroutine and comes back through Session.Dispatch.
//
// After every handler or callback the session compares the widget's View
// with the last view it sent and writes the difference as one patches
// frame. Elements are addressed by their stable ids (see widget.IDZone
// and friends), so no hydration ids are needed.
//
// # Event Routing
//
//	dz        click, dragover, dragleave, drop
//	dz-input  change
//	dz-clear  click
//	dz-form   submit
//
// Anything else is answered with a HandlerNotFound error frame.
//
// # Middleware
//
// Middleware wraps each event, including the patch flush it causes:
//
//	srv := server.New(&server.ServerConfig{
//	    Middleware: []server.Middleware{
//	        metrics.Middleware(),
//	        middleware.OpenTelemetry(),
//	    },
//	})
package server
