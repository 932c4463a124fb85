package widget

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// DefaultMaxSize is the inclusive size limit for a selected image (10MB).
const DefaultMaxSize int64 = 10 * 1024 * 1024

// DefaultAllowedTypes are the declared MIME types accepted by default.
var DefaultAllowedTypes = []string{"image/jpeg", "image/jpg", "image/png"}

// FileHandle is an opaque reference to a user-selected blob.
type FileHandle interface {
	// Name is the client-side filename.
	Name() string

	// Size is the declared size in bytes.
	Size() int64

	// MimeType is the declared MIME type. It is never sniffed.
	MimeType() string

	// Open returns the blob contents.
	Open() (io.ReadCloser, error)
}

// Identified is implemented by handles that carry a stable ID, such as a
// staged upload. The ID is what the form control carries on submission.
type Identified interface {
	ID() string
}

// Rules are the validation rules applied by HandleFile.
type Rules struct {
	// MaxSize is the inclusive size limit in bytes. Zero means DefaultMaxSize.
	MaxSize int64

	// AllowedTypes is the set of accepted declared MIME types.
	// Empty means DefaultAllowedTypes.
	AllowedTypes []string
}

// DefaultRules returns the JPG/PNG, 10MB rule set.
func DefaultRules() Rules {
	return Rules{
		MaxSize:      DefaultMaxSize,
		AllowedTypes: DefaultAllowedTypes,
	}
}

func (r Rules) maxSize() int64 {
	if r.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return r.MaxSize
}

func (r Rules) allowedTypes() []string {
	if len(r.AllowedTypes) == 0 {
		return DefaultAllowedTypes
	}
	return r.AllowedTypes
}

// Check validates f. The type check runs before the size check.
// A nil handle is reported as ErrNoFileSelected.
func (r Rules) Check(f FileHandle) error {
	if f == nil {
		return ErrNoFileSelected
	}
	if !lo.Contains(r.allowedTypes(), NormalizeType(f.MimeType())) {
		return ErrInvalidType
	}
	if f.Size() > r.maxSize() {
		return &ValidationError{Reason: ReasonTooLarge, Message: r.TooLargeMessage()}
	}
	return nil
}

// TooLargeMessage returns the size error text for the configured limit.
func (r Rules) TooLargeMessage() string {
	return fmt.Sprintf("File is too large. Maximum size is %sMB.", formatMB(r.maxSize()))
}

// NormalizeType lowercases a MIME type and strips any parameters.
func NormalizeType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

func formatMB(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return strconv.FormatInt(n/mb, 10)
	}
	return strconv.FormatFloat(float64(n)/mb, 'f', -1, 64)
}
