package upload_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/vango-dev/dropzone/pkg/upload"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.JPG", "jpg"},
		{"archive.tar.png", "png"},
		{"noext", ""},
		{"trailing.", ""},
	}
	for _, tt := range tests {
		if got := upload.Extension(tt.name); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"a.png", true},
		{"a.gif", false},
		{"png", false},
		{"a.png.exe", false},
	}
	for _, tt := range tests {
		if got := upload.AllowedFile(tt.name); got != tt.want {
			t.Errorf("AllowedFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\my photo.jpg`, "my_photo.jpg"},
		{"résumé (1).png", "rsum_1.png"},
		{".hidden", "hidden"},
		{"///", ""},
	}
	for _, tt := range tests {
		if got := upload.SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueFilename(t *testing.T) {
	tests := []struct {
		in      string
		pattern string
	}{
		{"scan.png", `^scan_[0-9a-f]{8}\.png$`},
		{"noext", `^noext_[0-9a-f]{8}\.jpg$`},
		{"", `^upload_[0-9a-f]{8}\.jpg$`},
		{".png", `^png_[0-9a-f]{8}\.jpg$`},
	}
	for _, tt := range tests {
		got := upload.UniqueFilename(tt.in)
		if !regexp.MustCompile(tt.pattern).MatchString(got) {
			t.Errorf("UniqueFilename(%q) = %q, want match %s", tt.in, got, tt.pattern)
		}
	}

	if upload.UniqueFilename("a.png") == upload.UniqueFilename("a.png") {
		t.Error("UniqueFilename returned the same name twice")
	}
}

func TestDetectImage(t *testing.T) {
	if ct, err := upload.DetectImage(pngBytes); err != nil || ct != "image/png" {
		t.Fatalf("DetectImage(png) = %q, %v", ct, err)
	}
	if ct, err := upload.DetectImage(jpegBytes); err != nil || ct != "image/jpeg" {
		t.Fatalf("DetectImage(jpeg) = %q, %v", ct, err)
	}
	if _, err := upload.DetectImage(gifBytes); !errors.Is(err, upload.ErrUnsupportedType) {
		t.Fatalf("DetectImage(gif) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := upload.DetectImage([]byte("hello world")); !errors.Is(err, upload.ErrUnsupportedType) {
		t.Fatalf("DetectImage(text) error = %v, want ErrUnsupportedType", err)
	}
}
