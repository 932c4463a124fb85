package upload

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a staged file doesn't exist.
	ErrNotFound = errors.New("upload: file not found")

	// ErrTooLarge is returned when a file exceeds the size limit.
	ErrTooLarge = errors.New("upload: file too large")

	// ErrUnsupportedType is returned when a file is not a JPEG or PNG image.
	ErrUnsupportedType = errors.New("upload: unsupported file type")

	// ErrNoFile is returned when a request carries no file or temp ID.
	ErrNoFile = errors.New("upload: no file provided")
)

// Store holds staged uploads until they are claimed or expire.
type Store interface {
	// Save stores r and returns a temp ID. It fails with ErrTooLarge when
	// r yields more than the store's limit.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (tempID string, err error)

	// Open returns the staged file without consuming it.
	Open(ctx context.Context, tempID string) (*File, error)

	// Claim returns the staged file and removes it from the store once the
	// returned File is closed.
	Claim(ctx context.Context, tempID string) (*File, error)

	// Cleanup removes staged files older than maxAge and reports how many
	// were removed.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}

// File is a staged upload.
type File struct {
	// ID is the temp ID.
	ID string

	// Filename is the original filename from the client.
	Filename string

	// ContentType is the type the client declared.
	ContentType string

	// Size is the stored size in bytes.
	Size int64

	// CreatedAt is when the file was staged.
	CreatedAt time.Time

	// Reader provides access to the file contents.
	Reader io.ReadCloser
}

// Read reads from the file contents.
func (f *File) Read(p []byte) (int, error) {
	if f.Reader == nil {
		return 0, io.EOF
	}
	return f.Reader.Read(p)
}

// Close closes the file reader if open.
func (f *File) Close() error {
	if f.Reader != nil {
		return f.Reader.Close()
	}
	return nil
}

// Observer receives upload outcomes.
type Observer interface {
	UploadStaged(size int64)
	UploadSubmitted(size int64)
	UploadFailed(stage, reason string)
}

// newTempID returns a random temp ID.
func newTempID() string {
	return uuid.NewString()
}

// validTempID reports whether id could have come from newTempID. It keeps
// client input from escaping a store's directory or prefix.
func validTempID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
