package server

import "errors"

// Errors reported by sessions and the server.
var (
	// ErrSessionClosed is returned for writes after Close and for new
	// sessions once shutdown has begun.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrHandlerNotFound means no widget operation is bound to the event's
	// target and type.
	ErrHandlerNotFound = errors.New("server: handler not found")

	// ErrHandlerPanic wraps a recovered panic from a widget operation.
	ErrHandlerPanic = errors.New("server: handler panic")

	// ErrEventQueueFull is returned by QueueEvent when the event loop is
	// behind.
	ErrEventQueueFull = errors.New("server: event queue full")

	// ErrMaxSessionsReached rejects a WebSocket upgrade past MaxSessions.
	ErrMaxSessionsReached = errors.New("server: max sessions reached")

	// ErrNoConnection is returned when a session has no connection to write to.
	ErrNoConnection = errors.New("server: no connection")
)
