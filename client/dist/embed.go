package clientdist

import _ "embed"

// DropzoneJS is the thin client script.
//
// It is served at "/_dz/client.js".
//go:embed dropzone.js
var DropzoneJS []byte
