package server

import (
	"context"

	"github.com/vango-dev/dropzone/pkg/protocol"
)

// EventContext describes the event being handled. Middleware may replace
// Context; the handler and the flush that follows see the replacement.
type EventContext struct {
	Context   context.Context
	SessionID string
	Event     *protocol.Event

	// Patches is the number of patches the event produced. It is set once
	// next returns.
	Patches int
}

// Middleware wraps event handling.
type Middleware interface {
	Handle(ec *EventContext, next func() error) error
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(ec *EventContext, next func() error) error

// Handle calls f(ec, next).
func (f MiddlewareFunc) Handle(ec *EventContext, next func() error) error {
	return f(ec, next)
}

// chain runs handler through middleware, first element outermost.
func chain(mws []Middleware, ec *EventContext, handler func() error) error {
	next := handler
	for i := len(mws) - 1; i >= 0; i-- {
		mw, inner := mws[i], next
		next = func() error { return mw.Handle(ec, inner) }
	}
	return next()
}

// Observer receives session lifecycle and patch counts.
type Observer interface {
	SessionOpened()
	SessionClosed()
	PatchesSent(n int)
}
