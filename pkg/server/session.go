package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/widget"
)

// Conn is the subset of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// Session is one WebSocket connection and the widget it drives.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn   Conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool

	sendSeq atomic.Uint64

	// Owned by the event loop goroutine.
	widget   *widget.UploadWidget
	lastView widget.View

	ctx    context.Context
	cancel context.CancelFunc

	events     chan *protocol.Event
	dispatchCh chan func()
	done       chan struct{}

	config     *SessionConfig
	files      FileResolver
	middleware []Middleware
	observer   Observer
	logger     *slog.Logger

	eventCount atomic.Uint64
	patchCount atomic.Uint64
}

// newSession creates a session with a fresh widget. The initial view is
// taken as already rendered by the page.
func newSession(conn Conn, cfg *ServerConfig, logger *slog.Logger) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	sc := cfg.SessionConfig

	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		conn:       conn,
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan *protocol.Event, sc.MaxEventQueue),
		dispatchCh: make(chan func(), sc.MaxEventQueue),
		done:       make(chan struct{}),
		config:     sc,
		files:      cfg.Files,
		middleware: cfg.Middleware,
		observer:   cfg.Observer,
		logger:     logger.With("session_id", id),
	}

	opts := []widget.Option{
		widget.WithRules(cfg.Rules),
		widget.WithLabels(cfg.Labels),
		widget.WithLogger(s.logger),
		widget.WithContext(ctx),
	}
	if cfg.WidgetObserver != nil {
		opts = append(opts, widget.WithObserver(cfg.WidgetObserver))
	}
	s.widget = widget.New(s, opts...)
	s.lastView = s.widget.View()

	return s
}

// Widget returns the session's widget. It must only be used from the
// event loop, for example inside Dispatch.
func (s *Session) Widget() *widget.UploadWidget {
	return s.widget
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// QueueEvent queues an event for the event loop.
func (s *Session) QueueEvent(event *protocol.Event) error {
	select {
	case s.events <- event:
		return nil
	default:
		s.logger.Warn("event queue full, dropping event", "target", event.Target, "type", event.Type)
		return ErrEventQueueFull
	}
}

// Dispatch queues fn to run on the session's event loop. It is safe to
// call from any goroutine. It blocks while the queue is full and returns
// without queueing once the session closes. After fn returns the view is
// flushed.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	}
}

// handleEvent routes one event to the widget and flushes the result.
func (s *Session) handleEvent(event *protocol.Event) {
	s.eventCount.Add(1)

	ec := &EventContext{
		Context:   s.ctx,
		SessionID: s.ID,
		Event:     event,
	}
	err := chain(s.middleware, ec, func() error {
		err := s.safeRoute(ec)
		ec.Patches = s.flush()
		return err
	})
	if err != nil {
		s.logger.Debug("event failed", "target", event.Target, "type", event.Type, "error", err)
	}
}

// safeRoute runs route with panic recovery.
func (s *Session) safeRoute(ec *EventContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				"panic", r,
				"target", ec.Event.Target,
				"type", ec.Event.Type,
				"stack", string(debug.Stack()))
			s.sendErrorMessage(protocol.ErrHandlerPanic, "Internal error")
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return s.route(ec)
}

func (s *Session) route(ec *EventContext) error {
	ev := ec.Event
	w := s.widget

	switch {
	case ev.Target == widget.IDZone && ev.Type == protocol.EventClick:
		w.ActivatePicker()
	case ev.Target == widget.IDZone && ev.Type == protocol.EventDragOver:
		w.DragOver()
	case ev.Target == widget.IDZone && ev.Type == protocol.EventDragLeave:
		w.DragLeave()
	case ev.Target == widget.IDZone && ev.Type == protocol.EventDrop:
		w.Drop(s.resolve(ec.Context, ev.Files))
	case ev.Target == widget.IDInput && ev.Type == protocol.EventChange:
		w.InputChange(s.resolve(ec.Context, ev.Files))
	case ev.Target == widget.IDClear && ev.Type == protocol.EventClick:
		w.Reset()
	case ev.Target == widget.IDForm && ev.Type == protocol.EventSubmit:
		w.Submit()
	default:
		s.logger.Warn("handler not found", "target", ev.Target, "type", ev.Type)
		s.sendErrorMessage(protocol.ErrHandlerNotFound, "Handler not found: "+ev.Target+"/"+ev.Type.String())
		return ErrHandlerNotFound
	}
	return nil
}

func (s *Session) resolve(ctx context.Context, infos []protocol.FileInfo) []widget.FileHandle {
	return lo.Map(infos, func(info protocol.FileInfo, _ int) widget.FileHandle {
		return s.files.Resolve(ctx, info)
	})
}

// executeDispatch runs a dispatched callback and flushes the view.
func (s *Session) executeDispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	fn()
	s.flush()
}

// flush sends the patches between the last sent view and the current one,
// followed by any queued effects. It returns the number of patches sent.
// lastView only advances once the client has been sent the patches, so a
// failed write is retried by the next flush.
func (s *Session) flush() int {
	next := s.widget.View()
	patches := Diff(s.lastView, next)
	patches = append(patches, EffectPatches(s.widget.TakeEffects())...)

	if len(patches) == 0 {
		return 0
	}
	if err := s.SendPatches(patches); err != nil {
		return 0
	}
	s.lastView = next
	return len(patches)
}

// Close gracefully closes the session.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.closeInternal()
}

func (s *Session) closeInternal() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.cancel()

	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = s.conn.Close()
	}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.SessionClosed()
	}
	s.logger.Info("session closed",
		"events", s.eventCount.Load(),
		"patches", s.patchCount.Load(),
		"duration", time.Since(s.CreatedAt).Round(time.Millisecond))
}
