package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/vango-dev/dropzone/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "dropzone.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DROPZONE"

	DefaultAddr            = ":8080"
	DefaultTitle           = "Upload an image"
	DefaultMaxFileSizeMB   = 10
	DefaultSuccessURL      = "/"
	DefaultStoreDir        = "tmp/staged"
	DefaultSinkDir         = "uploads"
	DefaultMaxAge          = "1h"
	DefaultCleanupInterval = "5m"
	DefaultShutdownTimeout = "30s"
	DefaultMetricsPath     = "/metrics"
)

// Store and sink types.
const (
	StoreDisk = "disk"
	StoreS3   = "s3"
	SinkDir   = "dir"
	SinkS3    = "s3"
)

// Config is the complete dropzone configuration.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Log     LogConfig     `json:"log"`
	Upload  UploadConfig  `json:"upload"`
	Store   StoreConfig   `json:"store"`
	Sink    SinkConfig    `json:"sink"`
	Metrics MetricsConfig `json:"metrics"`
	Tracing TracingConfig `json:"tracing"`

	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr" validate:"required"`

	// Title is the page title and heading.
	Title string `json:"title"`

	// MaxSessions caps concurrent widget sessions. 0 means no limit.
	MaxSessions int `json:"maxSessions" split_words:"true" validate:"gte=0"`

	// AllowedOrigins are extra WebSocket origins accepted besides the
	// page's own host.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" split_words:"true" validate:"dive,url"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "30s").
	ShutdownTimeout string `json:"shutdownTimeout" split_words:"true" validate:"duration"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `json:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" validate:"oneof=text json"`
}

// UploadConfig contains validation and submission settings.
type UploadConfig struct {
	// MaxFileSizeMB is the inclusive size limit in megabytes.
	MaxFileSizeMB int `json:"maxFileSizeMB" split_words:"true" validate:"min=1,max=128"`

	// SuccessURL is where a successful submission redirects to.
	SuccessURL string `json:"successURL" split_words:"true" validate:"required"`

	// SubmitLabel and LoadingLabel override the submit button text.
	SubmitLabel  string `json:"submitLabel,omitempty" split_words:"true"`
	LoadingLabel string `json:"loadingLabel,omitempty" split_words:"true"`
}

// StoreConfig selects where staged uploads live until submission.
type StoreConfig struct {
	Type string `json:"type" validate:"oneof=disk s3"`

	// Dir is the staging directory for the disk store.
	Dir string `json:"dir"`

	// MaxAge is how long an unsubmitted staged file is kept.
	MaxAge string `json:"maxAge" split_words:"true" validate:"duration"`

	// CleanupInterval is how often expired staged files are swept.
	CleanupInterval string `json:"cleanupInterval" split_words:"true" validate:"duration"`

	S3 S3Config `json:"s3"`
}

// S3Config contains S3 (or S3-compatible) settings.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" validate:"omitempty,url"`
	Prefix    string `json:"prefix,omitempty"`
	AccessKey string `json:"accessKey,omitempty" split_words:"true"`
	SecretKey string `json:"secretKey,omitempty" split_words:"true"`
	PathStyle bool   `json:"pathStyle,omitempty" split_words:"true"`
}

// SinkConfig selects where accepted uploads are written.
type SinkConfig struct {
	Type string `json:"type" validate:"oneof=dir s3"`

	// Dir is the output directory for the dir sink.
	Dir string `json:"dir"`

	// Prefix is the key prefix for the s3 sink, which shares the store's
	// bucket and credentials.
	Prefix string `json:"prefix,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path" validate:"startswith=/"`
}

// TracingConfig controls the OpenTelemetry event middleware.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty" split_words:"true"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			Title:           DefaultTitle,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Upload: UploadConfig{
			MaxFileSizeMB: DefaultMaxFileSizeMB,
			SuccessURL:    DefaultSuccessURL,
		},
		Store: StoreConfig{
			Type:            StoreDisk,
			Dir:             DefaultStoreDir,
			MaxAge:          DefaultMaxAge,
			CleanupInterval: DefaultCleanupInterval,
			S3: S3Config{
				Prefix: "staged/",
			},
		},
		Sink: SinkConfig{
			Type:   SinkDir,
			Dir:    DefaultSinkDir,
			Prefix: "uploads/",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}

// Resolve builds the effective configuration: defaults, then the file at
// path, then the environment. A missing file is an error only when
// explicit is true.
func Resolve(path string, explicit bool) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}

	var cfg *Config
	var err error
	if explicit || fileExists(path) {
		cfg, err = LoadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = New()
	}

	if err := cfg.ApplyEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads dropzone.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Fields absent
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("DZ101").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Run 'dropzone config init' to write one with the defaults")
		}
		return nil, errors.New("DZ102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("DZ102").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
		var syn *json.SyntaxError
		if stderrors.As(err, &syn) {
			e.WithOffset(path, data, syn.Offset)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv loads envFiles into the process environment, without replacing
// variables that are already set, and then applies DROPZONE_* overrides.
// Missing env files are ignored.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.New("DZ104").
				WithDetail("Failed to read " + f).
				Wrap(err)
		}
	}

	if err := envconfig.Process(EnvPrefix, c); err != nil {
		e := errors.New("DZ104").Wrap(err)
		var pe *envconfig.ParseError
		if stderrors.As(err, &pe) {
			e.WithDetail(fmt.Sprintf("%s=%q is not a valid %s", pe.KeyName, pe.Value, pe.TypeName))
		}
		return e
	}

	c.applyDefaults()
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("DZ102").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("DZ102").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	if out.Store.S3.SecretKey != "" {
		out.Store.S3.SecretKey = "********"
	}
	return &out
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.Title == "" {
		c.Server.Title = d.Server.Title
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	c.Log.Format = strings.ToLower(c.Log.Format)

	if c.Upload.MaxFileSizeMB == 0 {
		c.Upload.MaxFileSizeMB = d.Upload.MaxFileSizeMB
	}
	if c.Upload.SuccessURL == "" {
		c.Upload.SuccessURL = d.Upload.SuccessURL
	}

	if c.Store.Type == "" {
		c.Store.Type = d.Store.Type
	}
	if c.Store.Dir == "" {
		c.Store.Dir = d.Store.Dir
	}
	if c.Store.MaxAge == "" {
		c.Store.MaxAge = d.Store.MaxAge
	}
	if c.Store.CleanupInterval == "" {
		c.Store.CleanupInterval = d.Store.CleanupInterval
	}

	if c.Sink.Type == "" {
		c.Sink.Type = d.Sink.Type
	}
	if c.Sink.Dir == "" {
		c.Sink.Dir = d.Sink.Dir
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return errors.New("DZ103").Wrap(err)
	}

	if c.Store.Type == StoreS3 || c.Sink.Type == SinkS3 {
		if c.Store.S3.Bucket == "" {
			return errors.New("DZ103").
				WithDetail("store.s3.bucket is required when the store or sink type is s3").
				WithSuggestion("Set store.s3.bucket or " + EnvPrefix + "_STORE_S3_BUCKET")
		}
		if c.Store.S3.AccessKey != "" && c.Store.S3.SecretKey == "" {
			return errors.New("DZ103").
				WithDetail("store.s3.secretKey is required when store.s3.accessKey is set")
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	detail := fmt.Sprintf("%s: failed %q", field, fe.Tag())
	if fe.Param() != "" {
		detail += " (" + fe.Param() + ")"
	}
	if fe.Value() != nil {
		detail += fmt.Sprintf(", got %v", fe.Value())
	}
	return errors.New("DZ103").WithDetail(detail)
}

// MaxFileSize returns the upload size limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// MaxAge returns how long staged files are kept.
func (c *Config) MaxAge() time.Duration {
	return mustDuration(c.Store.MaxAge, DefaultMaxAge)
}

// CleanupInterval returns the janitor interval.
func (c *Config) CleanupInterval() time.Duration {
	return mustDuration(c.Store.CleanupInterval, DefaultCleanupInterval)
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return mustDuration(c.Server.ShutdownTimeout, DefaultShutdownTimeout)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// mustDuration parses s, falling back to def for values Validate would
// have rejected.
func mustDuration(s, def string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(def)
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	return fileExists(filepath.Join(dir, ConfigFileName))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
