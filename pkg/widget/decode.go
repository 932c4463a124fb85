package widget

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Dispatcher runs fn on the goroutine that owns the widget.
// Implementations must be safe to call from any goroutine.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatchFunc) Dispatch(fn func()) {
	f(fn)
}

// Decoder turns a file into a preview source.
type Decoder interface {
	Decode(ctx context.Context, f FileHandle) (string, error)
}

// DataURLDecoder reads a file fully and encodes it as a base64 data URL
// using the declared MIME type.
type DataURLDecoder struct {
	// MaxBytes caps how much is read. Zero means no cap.
	MaxBytes int64
}

// Decode implements Decoder.
func (d DataURLDecoder) Decode(ctx context.Context, f FileHandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("widget: open %q: %w", f.Name(), err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if d.MaxBytes > 0 {
		r = io.LimitReader(rc, d.MaxBytes+1)
	}

	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(NormalizeType(f.MimeType()))
	sb.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	n, err := io.Copy(enc, ctxReader{ctx: ctx, r: r})
	if err != nil {
		return "", fmt.Errorf("widget: read %q: %w", f.Name(), err)
	}
	if d.MaxBytes > 0 && n > d.MaxBytes {
		return "", fmt.Errorf("widget: %q exceeds %d bytes", f.Name(), d.MaxBytes)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
