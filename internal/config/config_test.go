package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/dropzone/internal/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Upload.MaxFileSizeMB != DefaultMaxFileSizeMB {
		t.Errorf("Upload.MaxFileSizeMB = %d, want %d", cfg.Upload.MaxFileSizeMB, DefaultMaxFileSizeMB)
	}
	if got := cfg.MaxFileSize(); got != 10485760 {
		t.Errorf("MaxFileSize() = %d, want 10485760", got)
	}
	if cfg.Store.Type != StoreDisk || cfg.Sink.Type != SinkDir {
		t.Errorf("Store.Type = %q, Sink.Type = %q", cfg.Store.Type, cfg.Sink.Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
  "server": {"addr": "127.0.0.1:9000", "maxSessions": 50},
  "log": {"level": "DEBUG", "format": "json"},
  "upload": {"maxFileSizeMB": 5, "successURL": "/thanks"},
  "store": {"maxAge": "30m"}
}
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.MaxSessions != 50 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" || cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("Log.Level = %q, SlogLevel() = %v", cfg.Log.Level, cfg.SlogLevel())
	}
	if cfg.MaxFileSize() != 5*1024*1024 {
		t.Errorf("MaxFileSize() = %d", cfg.MaxFileSize())
	}
	if cfg.MaxAge() != 30*time.Minute {
		t.Errorf("MaxAge() = %v, want 30m", cfg.MaxAge())
	}
	// Absent fields keep defaults.
	if cfg.Server.Title != DefaultTitle || cfg.Store.Dir != DefaultStoreDir || cfg.CleanupInterval() != 5*time.Minute {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.HasCode(err, "DZ101") {
		t.Fatalf("Load error = %v, want DZ101", err)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "{\n  \"server\": {\n    \"addr\": ,\n  }\n}\n")

	_, err := LoadFile(path)
	if !errors.HasCode(err, "DZ102") {
		t.Fatalf("LoadFile error = %v, want DZ102", err)
	}

	de := errors.FromError(err, "")
	if de.Location == nil || de.Location.Line != 3 {
		t.Fatalf("Location = %+v, want line 3", de.Location)
	}
}

func TestResolve_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve(filepath.Join(dir, ConfigFileName), false)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	if _, err := Resolve(filepath.Join(dir, ConfigFileName), true); !errors.HasCode(err, "DZ101") {
		t.Fatalf("explicit Resolve error = %v, want DZ101", err)
	}
}

func TestResolve_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"server": {"addr": ":7000"}, "upload": {"maxFileSizeMB": 5}}`)

	t.Setenv("DROPZONE_SERVER_ADDR", ":9999")
	t.Setenv("DROPZONE_UPLOAD_MAX_FILE_SIZE_MB", "20")
	t.Setenv("DROPZONE_STORE_TYPE", "s3")
	t.Setenv("DROPZONE_STORE_S3_BUCKET", "staging")
	t.Setenv("DROPZONE_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DROPZONE_METRICS_ENABLED", "false")

	cfg, err := Resolve(path, true)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}
	if cfg.Upload.MaxFileSizeMB != 20 {
		t.Errorf("Upload.MaxFileSizeMB = %d, want 20", cfg.Upload.MaxFileSizeMB)
	}
	if cfg.Store.Type != StoreS3 || cfg.Store.S3.Bucket != "staging" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	// Unrelated variables such as PATH are never read.
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
}

func TestResolve_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{}`)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DROPZONE_SERVER_TITLE=From dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv writes to the process environment; restore it afterwards.
	t.Setenv("DROPZONE_SERVER_TITLE", "")
	os.Unsetenv("DROPZONE_SERVER_TITLE")

	cfg, err := Resolve(path, true)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if cfg.Server.Title != "From dotenv" {
		t.Errorf("Server.Title = %q, want %q", cfg.Server.Title, "From dotenv")
	}
}

func TestApplyEnv_ParseError(t *testing.T) {
	t.Setenv("DROPZONE_UPLOAD_MAX_FILE_SIZE_MB", "ten")

	err := New().ApplyEnv()
	if !errors.HasCode(err, "DZ104") {
		t.Fatalf("ApplyEnv error = %v, want DZ104", err)
	}
	if !strings.Contains(errors.FromError(err, "").Detail, "DROPZONE_UPLOAD_MAX_FILE_SIZE_MB") {
		t.Errorf("Detail = %q", errors.FromError(err, "").Detail)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"size too small", func(c *Config) { c.Upload.MaxFileSizeMB = -1 }, "upload.maxFileSizeMB"},
		{"size too large", func(c *Config) { c.Upload.MaxFileSizeMB = 4096 }, "upload.maxFileSizeMB"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad store type", func(c *Config) { c.Store.Type = "ftp" }, "store.type"},
		{"bad duration", func(c *Config) { c.Store.MaxAge = "soon" }, "store.maxAge"},
		{"negative sessions", func(c *Config) { c.Server.MaxSessions = -1 }, "server.maxSessions"},
		{"bad origin", func(c *Config) { c.Server.AllowedOrigins = []string{"not a url"} }, "server.allowedOrigins"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"s3 without bucket", func(c *Config) { c.Store.Type = StoreS3 }, "store.s3.bucket"},
		{"s3 sink without bucket", func(c *Config) { c.Sink.Type = SinkS3 }, "store.s3.bucket"},
		{"access key without secret", func(c *Config) {
			c.Store.Type = StoreS3
			c.Store.S3.Bucket = "b"
			c.Store.S3.AccessKey = "AKIA"
		}, "store.s3.secretKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.HasCode(err, "DZ103") {
				t.Fatalf("Validate() error = %v, want DZ103", err)
			}
			if detail := errors.FromError(err, "").Detail; !strings.Contains(detail, tt.wantErr) {
				t.Fatalf("Detail = %q, want it to mention %q", detail, tt.wantErr)
			}
		})
	}
}

func TestSaveAndRedacted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := New()
	cfg.Store.S3.SecretKey = "shh"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Store.S3.SecretKey != "shh" {
		t.Errorf("SecretKey = %q after round trip", loaded.Store.S3.SecretKey)
	}

	red := loaded.Redacted()
	if red.Store.S3.SecretKey == "shh" {
		t.Error("Redacted() kept the secret")
	}
	if loaded.Store.S3.SecretKey != "shh" {
		t.Error("Redacted() modified the original")
	}

	if err := (&Config{}).Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := New()
	cfg.Store.CleanupInterval = "nope"
	cfg.Server.ShutdownTimeout = "-1s"
	if cfg.CleanupInterval() != 5*time.Minute {
		t.Errorf("CleanupInterval() = %v", cfg.CleanupInterval())
	}
	if cfg.ShutdownTimeout() != 30*time.Second {
		t.Errorf("ShutdownTimeout() = %v", cfg.ShutdownTimeout())
	}
}
