package upload

import (
	"context"
	"io"

	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/widget"
)

// StagedFile is a widget file handle backed by a staged upload. Name, size
// and type are what the client declared; Open reads the staged bytes.
type StagedFile struct {
	ctx   context.Context
	store Store
	info  protocol.FileInfo
}

// Name implements widget.FileHandle.
func (f *StagedFile) Name() string { return f.info.Name }

// Size implements widget.FileHandle.
func (f *StagedFile) Size() int64 { return f.info.SizeInt64() }

// MimeType implements widget.FileHandle.
func (f *StagedFile) MimeType() string { return f.info.Type }

// ID returns the temp ID, which becomes the form's image_temp_id value.
func (f *StagedFile) ID() string { return f.info.TempID }

// Open implements widget.FileHandle. It never consumes the staged file.
func (f *StagedFile) Open() (io.ReadCloser, error) {
	if f.info.TempID == "" {
		return nil, ErrNotFound
	}
	file, err := f.store.Open(f.ctx, f.info.TempID)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Resolver resolves client-reported files to staged files. It satisfies
// server.FileResolver.
type Resolver struct {
	Store Store
}

// NewResolver returns a resolver over store.
func NewResolver(store Store) *Resolver {
	return &Resolver{Store: store}
}

// Resolve returns a StagedFile for info. No I/O happens until Open.
func (r *Resolver) Resolve(ctx context.Context, info protocol.FileInfo) widget.FileHandle {
	return &StagedFile{ctx: ctx, store: r.Store, info: info}
}
