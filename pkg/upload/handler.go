package upload

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/samber/lo"

	"github.com/vango-dev/dropzone/pkg/widget"
)

// multipartOverhead is the room left for multipart framing on top of the
// file size limit.
const multipartOverhead = 1 << 20

// Config holds configuration for the stage and submit handlers.
type Config struct {
	// MaxFileSize is the maximum allowed file size in bytes.
	// Default: 10MB.
	MaxFileSize int64

	// SuccessURL is where a successful submission redirects to, with
	// "upload=<name>" added to its query.
	// Default: "/".
	SuccessURL string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives upload outcomes. Optional.
	Observer Observer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: widget.DefaultMaxSize,
		SuccessURL:  "/",
	}
}

func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		out.Logger = slog.Default()
		return out
	}
	if c.MaxFileSize > 0 {
		out.MaxFileSize = c.MaxFileSize
	}
	if c.SuccessURL != "" {
		out.SuccessURL = c.SuccessURL
	}
	out.Logger = c.Logger
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	out.Observer = c.Observer
	return out
}

func (c *Config) failed(stage, reason string) {
	if c.Observer != nil {
		c.Observer.UploadFailed(stage, reason)
	}
}

// StageHandler returns the staging endpoint. Mount it on your router:
//
//	r.Post("/upload/stage", upload.StageHandler(store, cfg))
//
// The handler expects a multipart form with a "file" field declared as
// JPEG or PNG and answers with the temp ID:
//
//	{"temp_id": "6f1c..."}
func StageHandler(store Store, config *Config) http.Handler {
	cfg := config.withDefaults()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Limit the body before parsing.
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxFileSize+multipartOverhead)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				cfg.failed("stage", "too_large")
				http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
				return
			}
			cfg.failed("stage", "bad_request")
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			cfg.failed("stage", "no_file")
			http.Error(w, "No file provided", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > cfg.MaxFileSize {
			cfg.failed("stage", "too_large")
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}

		// Only types the widget would accept are staged.
		contentType := widget.NormalizeType(header.Header.Get("Content-Type"))
		if !lo.Contains(widget.DefaultAllowedTypes, contentType) {
			cfg.failed("stage", "invalid_type")
			http.Error(w, "Unsupported file type", http.StatusUnsupportedMediaType)
			return
		}

		tempID, err := store.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				cfg.failed("stage", "too_large")
				http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
				return
			}
			cfg.failed("stage", "store_error")
			cfg.Logger.Error("stage upload failed", "error", err, "filename", header.Filename)
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}

		if cfg.Observer != nil {
			cfg.Observer.UploadStaged(header.Size)
		}
		cfg.Logger.Debug("upload staged", "temp_id", tempID, "size", header.Size)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"temp_id": tempID,
		})
	})
}

// SubmitHandler returns the form submission endpoint. It claims the staged
// file named by the image_temp_id field, checks the extension, the size
// and the sniffed content, stores the file in sink under a unique name and
// redirects with 303 to the success URL.
func SubmitHandler(store Store, sink Sink, config *Config) http.Handler {
	cfg := config.withDefaults()
	tooLarge := widget.Rules{MaxSize: cfg.MaxFileSize}.TooLargeMessage()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, multipartOverhead)
		tempID := r.FormValue(widget.TempField)
		if tempID == "" {
			cfg.failed("submit", "no_file")
			http.Error(w, widget.MsgNoFileSelected, http.StatusBadRequest)
			return
		}

		file, err := store.Claim(r.Context(), tempID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				cfg.failed("submit", "not_found")
				http.Error(w, "Upload not found or expired.", http.StatusNotFound)
				return
			}
			cfg.failed("submit", "store_error")
			cfg.Logger.Error("claim upload failed", "error", err, "temp_id", tempID)
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}
		defer file.Close()

		if !AllowedFile(file.Filename) {
			cfg.failed("submit", "invalid_type")
			http.Error(w, widget.MsgInvalidType, http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, cfg.MaxFileSize+1))
		if err != nil {
			cfg.failed("submit", "store_error")
			cfg.Logger.Error("read upload failed", "error", err, "temp_id", tempID)
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > cfg.MaxFileSize {
			cfg.failed("submit", "too_large")
			http.Error(w, tooLarge, http.StatusRequestEntityTooLarge)
			return
		}

		contentType, err := DetectImage(data)
		if err != nil {
			cfg.failed("submit", "invalid_content")
			http.Error(w, widget.MsgInvalidType, http.StatusBadRequest)
			return
		}

		name := UniqueFilename(file.Filename)
		location, err := sink.Put(r.Context(), name, contentType, data)
		if err != nil {
			cfg.failed("submit", "sink_error")
			cfg.Logger.Error("store upload failed", "error", err, "name", name)
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}

		if cfg.Observer != nil {
			cfg.Observer.UploadSubmitted(int64(len(data)))
		}
		cfg.Logger.Info("upload accepted",
			"name", name,
			"location", location,
			"content_type", contentType,
			"size", len(data))

		http.Redirect(w, r, successURL(cfg.SuccessURL, name), http.StatusSeeOther)
	})
}

func successURL(base, name string) string {
	u, err := url.Parse(base)
	if err != nil {
		return "/?upload=" + url.QueryEscape(name)
	}
	q := u.Query()
	q.Set("upload", name)
	u.RawQuery = q.Encode()
	return u.String()
}
