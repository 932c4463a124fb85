package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/vango-dev/dropzone/pkg/widget"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the size of the event and dispatch channel buffers.
	// Default: 64.
	MaxEventQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxEventQueue:     64,
	}
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Address is the listen address.
	// Default: ":8080".
	Address string

	// Title is the page title.
	// Default: "Upload an image".
	Title string

	// Heading is the page heading shown above the form.
	// Default: Title.
	Heading string

	// Rules are the widget validation rules.
	// Default: widget.DefaultRules().
	Rules widget.Rules

	// Labels are the submit control labels.
	// Default: widget.DefaultLabels().
	Labels widget.Labels

	// SubmitPath is the form action.
	// Default: "/submit".
	SubmitPath string

	// StagePath is where the client stages files.
	// Default: "/upload/stage".
	StagePath string

	// CheckOrigin validates the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// SessionConfig is the configuration for individual sessions.
	// Default: DefaultSessionConfig().
	SessionConfig *SessionConfig

	// MaxSessions caps concurrent sessions. 0 means no limit.
	MaxSessions int

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// Files resolves client-reported files to widget handles.
	// Default: handles that carry the declared attributes and cannot be read.
	Files FileResolver

	// Middleware wraps every session event.
	Middleware []Middleware

	// Observer receives session lifecycle and patch counts.
	Observer Observer

	// WidgetObserver receives widget rejections and decode outcomes.
	WidgetObserver widget.Observer
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		Title:             "Upload an image",
		Rules:             widget.DefaultRules(),
		Labels:            widget.DefaultLabels(),
		SubmitPath:        "/submit",
		StagePath:         "/upload/stage",
		CheckOrigin:       SameOriginCheck,
		SessionConfig:     DefaultSessionConfig(),
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		Files:             declaredFiles{},
	}
}

// withDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	d := DefaultServerConfig()
	var out ServerConfig
	if c != nil {
		out = *c
	}
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.Title == "" {
		out.Title = d.Title
	}
	if out.Heading == "" {
		out.Heading = out.Title
	}
	if out.Labels.Submit == "" {
		out.Labels.Submit = d.Labels.Submit
	}
	if out.Labels.Loading == "" {
		out.Labels.Loading = d.Labels.Loading
	}
	if out.SubmitPath == "" {
		out.SubmitPath = d.SubmitPath
	}
	if out.StagePath == "" {
		out.StagePath = d.StagePath
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.SessionConfig == nil {
		out.SessionConfig = d.SessionConfig
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.Files == nil {
		out.Files = d.Files
	}
	return &out
}

// markup returns the widget markup configuration.
func (c *ServerConfig) markup() widget.MarkupConfig {
	return widget.MarkupConfig{
		Action:   c.SubmitPath,
		StageURL: c.StagePath,
		Rules:    c.Rules,
	}
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// AllowOrigins returns an origin check that accepts same-origin requests
// and the listed origins, compared without a trailing slash.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := lo.Map(origins, func(o string, _ int) string {
		return strings.ToLower(strings.TrimSuffix(o, "/"))
	})
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		origin := strings.ToLower(strings.TrimSuffix(r.Header.Get("Origin"), "/"))
		return lo.Contains(allowed, origin)
	}
}
