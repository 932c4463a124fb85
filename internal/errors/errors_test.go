package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "DZ102", "Invalid configuration file", CategoryConfig},
		{"storage error", "DZ201", "Staging directory unavailable", CategoryStorage},
		{"cli error", "DZ303", "Files rejected", CategoryCLI},
		{"unknown code", "DZ999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
		})
	}
}

func TestRegistryCodes(t *testing.T) {
	for _, code := range Codes() {
		tmpl, ok := Template(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s = %+v", code, tmpl)
		}
		if !strings.HasPrefix(code, "DZ") || len(code) != 5 {
			t.Errorf("code %q does not match DZnnn", code)
		}
	}
}

func TestDropzoneError_Error(t *testing.T) {
	if got, want := New("DZ101").Error(), "DZ101: Configuration file not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("DZ102").Wrap(fs.ErrPermission)
	if got := wrapped.Error(); !strings.HasSuffix(got, ": permission denied") {
		t.Errorf("Error() = %q, want wrapped cause", got)
	}
	if !stderrors.Is(wrapped, fs.ErrPermission) {
		t.Error("errors.Is did not find the wrapped error")
	}

	plain := Newf(CategoryCLI, "bad flag %q", "--x")
	if plain.Error() != `bad flag "--x"` {
		t.Errorf("Error() = %q", plain.Error())
	}
}

func TestFromErrorAndHasCode(t *testing.T) {
	if FromError(nil, "DZ301") != nil {
		t.Fatal("FromError(nil) should be nil")
	}

	base := New("DZ103")
	wrapped := fmt.Errorf("loading: %w", base)
	if got := FromError(wrapped, "DZ301"); got != base {
		t.Fatalf("FromError() = %v, want the original DropzoneError", got)
	}
	if got := FromError(os.ErrNotExist, "DZ302"); got.Code != "DZ302" || !stderrors.Is(got, os.ErrNotExist) {
		t.Fatalf("FromError() = %+v", got)
	}

	if !HasCode(wrapped, "DZ103") {
		t.Error("HasCode(wrapped, DZ103) = false")
	}
	if HasCode(wrapped, "DZ101") || HasCode(os.ErrNotExist, "DZ101") {
		t.Error("HasCode matched the wrong error")
	}
}

func TestWithOffset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dropzone.json")
	data := []byte("{\n  \"server\": {\n    \"addr\": ,\n  }\n}\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	// json.SyntaxError reports the offset just past the bad byte.
	offset := int64(bytes.IndexByte(data, ',') + 1)
	err := New("DZ102").WithOffset(path, data, offset)

	if err.Location == nil || err.Location.Line != 3 || err.Location.Column != 13 {
		t.Fatalf("Location = %+v, want line 3 column 13", err.Location)
	}
	if len(err.Context) != 5 {
		t.Fatalf("Context = %q, want all 5 lines", err.Context)
	}

	if same := New("DZ102").WithOffset(path, data, -1); same.Location != nil {
		t.Fatal("negative offset should not set a location")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("DZ103").
		WithDetail("upload.maxFileSizeMB must be at least 1").
		WithSuggestion("Set upload.maxFileSizeMB to a positive number").
		Wrap(stderrors.New("validation failed"))

	out := err.Format()
	for _, want := range []string{
		"ERROR DZ103: Invalid configuration value",
		"upload.maxFileSizeMB must be at least 1",
		"Cause: validation failed",
		"Hint: Set upload.maxFileSizeMB to a positive number",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains ANSI codes with colors disabled")
	}
}

func TestFormatContext(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := &DropzoneError{
		Code:     "DZ102",
		Message:  "Invalid configuration file",
		Location: &Location{File: "dropzone.json", Line: 2, Column: 3},
		Context:  []string{"{", "  x", "}"},
	}
	out := err.Format()
	if !strings.Contains(out, "→    2 │   x") {
		t.Errorf("Format() missing highlighted line:\n%s", out)
	}
	if !strings.Contains(out, "│   ^") {
		t.Errorf("Format() missing column marker:\n%s", out)
	}
	if got := err.FormatCompact(); got != "dropzone.json:2:3: DZ102: Invalid configuration file" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("wrapped: %w", New("DZ301")))
	if !strings.Contains(buf.String(), "ERROR DZ301: Server failed") {
		t.Errorf("Fprint() = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}
