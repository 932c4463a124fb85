package server

import (
	"context"
	"errors"
	"io"

	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/widget"
)

// FileResolver turns a file reported by the client into a widget handle.
// Resolution must not block: the handle's Open does the I/O.
type FileResolver interface {
	Resolve(ctx context.Context, info protocol.FileInfo) widget.FileHandle
}

// FileResolverFunc adapts a function to the FileResolver interface.
type FileResolverFunc func(ctx context.Context, info protocol.FileInfo) widget.FileHandle

// Resolve calls f(ctx, info).
func (f FileResolverFunc) Resolve(ctx context.Context, info protocol.FileInfo) widget.FileHandle {
	return f(ctx, info)
}

var errNotStaged = errors.New("server: file was not staged")

// declaredFiles resolves to handles that only know what the client declared.
type declaredFiles struct{}

func (declaredFiles) Resolve(_ context.Context, info protocol.FileInfo) widget.FileHandle {
	return declaredFile{info: info}
}

type declaredFile struct {
	info protocol.FileInfo
}

func (f declaredFile) Name() string                 { return f.info.Name }
func (f declaredFile) Size() int64                  { return f.info.SizeInt64() }
func (f declaredFile) MimeType() string             { return f.info.Type }
func (f declaredFile) ID() string                   { return f.info.TempID }
func (f declaredFile) Open() (io.ReadCloser, error) { return nil, errNotStaged }
