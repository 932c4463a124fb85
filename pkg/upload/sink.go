package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives uploads that passed submission checks.
type Sink interface {
	// Put stores data under name and returns where it was stored.
	Put(ctx context.Context, name, contentType string, data []byte) (location string, err error)
}

// DirSink writes accepted uploads into a directory.
type DirSink struct {
	dir string
}

// NewDirSink creates the directory if needed and returns a sink for it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirSink{dir: dir}, nil
}

// Put implements Sink. It refuses to overwrite an existing file.
func (s *DirSink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("upload: invalid name %q", name)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
