package upload

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// AllowedExtensions are the accepted filename extensions, without the dot.
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

// allowedContent are the sniffed types accepted on submission.
var allowedContent = []string{"image/jpeg", "image/png"}

// Extension returns the lower-case extension of name without the dot, or
// "" when there is none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// AllowedFile reports whether name carries an allowed image extension.
func AllowedFile(name string) bool {
	return lo.Contains(AllowedExtensions, Extension(name))
}

// DetectImage sniffs data and returns its MIME type when it is a JPEG or
// PNG image, or ErrUnsupportedType otherwise.
func DetectImage(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for _, allowed := range allowedContent {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrUnsupportedType
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeFilename reduces name to a safe base name made of ASCII letters,
// digits, dots, dashes and underscores. It returns "" when nothing usable
// is left.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// UniqueFilename returns a sanitized name with a random 8-hex suffix before
// the extension, for example "scan_1a2b3c4d.png". Missing parts default to
// "upload" and ".jpg".
func UniqueFilename(original string) string {
	safe := SanitizeFilename(original)
	if safe == "" {
		safe = "upload"
	}
	ext := filepath.Ext(safe)
	base := strings.TrimSuffix(safe, ext)
	if base == "" {
		base = "upload"
	}
	if ext == "" {
		ext = ".jpg"
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "_" + id + ext
}
