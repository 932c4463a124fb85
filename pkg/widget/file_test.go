package widget

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type memFile struct {
	name, typ string
	data      string
	size      int64
}

func (f memFile) Name() string     { return f.name }
func (f memFile) MimeType() string { return f.typ }
func (f memFile) Size() int64 {
	if f.size != 0 {
		return f.size
	}
	return int64(len(f.data))
}
func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.data)), nil
}

func TestRulesCheck(t *testing.T) {
	tests := []struct {
		name string
		file FileHandle
		want error
	}{
		{"nil", nil, ErrNoFileSelected},
		{"gif", memFile{typ: "image/gif"}, ErrInvalidType},
		{"too large", memFile{typ: "image/png", size: DefaultMaxSize + 1}, ErrTooLarge},
		{"at limit", memFile{typ: "image/png", size: DefaultMaxSize}, nil},
		{"upper case", memFile{typ: "Image/JPEG", size: 1}, nil},
	}

	r := DefaultRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Check(tt.file)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Check() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Check() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTooLargeMessage(t *testing.T) {
	tests := []struct {
		max  int64
		want string
	}{
		{0, "File is too large. Maximum size is 10MB."},
		{DefaultMaxSize, "File is too large. Maximum size is 10MB."},
		{1024 * 1024 / 2, "File is too large. Maximum size is 0.5MB."},
		{25 * 1024 * 1024, "File is too large. Maximum size is 25MB."},
	}
	for _, tt := range tests {
		if got := (Rules{MaxSize: tt.max}).TooLargeMessage(); got != tt.want {
			t.Errorf("TooLargeMessage(%d) = %q, want %q", tt.max, got, tt.want)
		}
	}
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"image/png":             "image/png",
		" IMAGE/JPEG ":          "image/jpeg",
		"image/jpeg; charset=x": "image/jpeg",
		"":                      "",
	}
	for in, want := range tests {
		if got := NormalizeType(in); got != want {
			t.Errorf("NormalizeType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDataURLDecoder(t *testing.T) {
	ctx := context.Background()

	got, err := DataURLDecoder{}.Decode(ctx, memFile{name: "a", typ: "image/PNG", data: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "data:image/png;base64,aGk=" {
		t.Errorf("Decode() = %q", got)
	}

	if _, err := (DataURLDecoder{MaxBytes: 3}).Decode(ctx, memFile{typ: "image/png", data: "four"}); err == nil {
		t.Error("expected error when content exceeds MaxBytes")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := (DataURLDecoder{}).Decode(cancelled, memFile{typ: "image/png", data: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Decode() on cancelled ctx = %v", err)
	}
}

func TestValidationErrorIs(t *testing.T) {
	err := &ValidationError{Reason: ReasonTooLarge, Message: "custom"}
	if !errors.Is(err, ErrTooLarge) {
		t.Error("errors.Is should match on reason")
	}
	if errors.Is(err, ErrInvalidType) {
		t.Error("different reasons must not match")
	}
	if err.Error() != "widget: too_large" {
		t.Errorf("Error() = %q", err.Error())
	}
}
