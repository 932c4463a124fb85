package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/render"
)

// Server serves the upload page, the thin client and the widget sessions.
type Server struct {
	config   *ServerConfig
	router   chi.Router
	upgrader websocket.Upgrader
	renderer *render.Renderer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	pending  int
	closing  bool

	httpServer *http.Server
}

// New creates a Server. Unset fields in config take their defaults.
func New(config *ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:   config.withDefaults(),
		renderer: render.NewRenderer(),
		logger:   logger.With("component", "server"),
		sessions: make(map[string]*Session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.config.CheckOrigin,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Get("/", s.servePage)
	r.Get(render.DefaultClientScript, s.serveThinClient)
	r.Head(render.DefaultClientScript, s.serveThinClient)
	r.Get(render.DefaultSocketPath, s.HandleWebSocket)
	r.Get("/healthz", s.serveHealth)
	s.router = r

	return s
}

// Router returns the router so callers can mount further handlers, such
// as the staging and submission endpoints.
func (s *Server) Router() chi.Router {
	return s.router
}

// Config returns the effective configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// HandleWebSocket upgrades the request and starts a session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.reserve(); err != nil {
		s.logger.Warn("websocket rejected", "error", err)
		http.Error(w, "Too many sessions", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.release("")
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := newSession(conn, s.config, s.logger)
	s.register(session)

	if s.config.Observer != nil {
		s.config.Observer.SessionOpened()
	}
	s.logger.Info("session opened", "session_id", session.ID, "remote", r.RemoteAddr)

	session.Start()
	go func() {
		<-session.Done()
		s.release(session.ID)
	}()
}

// reserve claims a slot for a new session. The slot becomes the session's
// in register, or is given back by release with an empty ID.
func (s *Server) reserve() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return ErrSessionClosed
	}
	if s.config.MaxSessions > 0 && len(s.sessions)+s.pending >= s.config.MaxSessions {
		return ErrMaxSessionsReached
	}
	s.pending++
	return nil
}

func (s *Server) register(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	s.sessions[session.ID] = session
}

func (s *Server) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.pending--
		return
	}
	delete(s.sessions, id)
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	s.closing = true
	open := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		open = append(open, session)
	}
	s.mu.Unlock()

	for _, session := range open {
		session.SendClose(protocol.CloseServerShutdown, "server shutting down")
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
