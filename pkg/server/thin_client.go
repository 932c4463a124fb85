package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	clientdist "github.com/vango-dev/dropzone/client/dist"
)

// clientETag is a strong validator derived from the embedded script.
var clientETag = func() string {
	sum := sha256.Sum256(clientdist.DropzoneJS)
	return `"dz-` + hex.EncodeToString(sum[:8]) + `"`
}()

// serveThinClient serves the embedded client. ServeContent answers HEAD
// and If-None-Match against the ETag set here.
func (s *Server) serveThinClient(w http.ResponseWriter, r *http.Request) {
	if len(clientdist.DropzoneJS) == 0 {
		http.Error(w, "Thin client not available", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("ETag", clientETag)
	h.Set("Content-Type", "application/javascript; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-cache")

	http.ServeContent(w, r, "dropzone.js", time.Time{}, bytes.NewReader(clientdist.DropzoneJS))
}
