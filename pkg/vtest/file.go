package vtest

import (
	"bytes"
	"io"
)

// File is an in-memory widget.FileHandle.
type File struct {
	FileName string
	Type     string
	Bytes    []byte

	// DeclaredSize overrides len(Bytes) when non-zero.
	DeclaredSize int64

	// OpenErr is returned by Open when set.
	OpenErr error

	// TempID makes the file report a staged upload ID.
	TempID string

	// Block, when non-nil, makes Open wait until it is closed.
	Block chan struct{}
}

// PNG returns a PNG file of the given declared size.
func PNG(name string, size int64) *File {
	return &File{FileName: name, Type: "image/png", Bytes: []byte("\x89PNG\r\n\x1a\n"), DeclaredSize: size}
}

// JPEG returns a JPEG file of the given declared size.
func JPEG(name string, size int64) *File {
	return &File{FileName: name, Type: "image/jpeg", Bytes: []byte{0xFF, 0xD8, 0xFF, 0xE0}, DeclaredSize: size}
}

// Name implements widget.FileHandle.
func (f *File) Name() string { return f.FileName }

// MimeType implements widget.FileHandle.
func (f *File) MimeType() string { return f.Type }

// Size implements widget.FileHandle.
func (f *File) Size() int64 {
	if f.DeclaredSize != 0 {
		return f.DeclaredSize
	}
	return int64(len(f.Bytes))
}

// Open implements widget.FileHandle.
func (f *File) Open() (io.ReadCloser, error) {
	if f.Block != nil {
		<-f.Block
	}
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	return io.NopCloser(bytes.NewReader(f.Bytes)), nil
}

// ID reports TempID, or the file name when no TempID is set.
func (f *File) ID() string {
	if f.TempID != "" {
		return f.TempID
	}
	return f.FileName
}
