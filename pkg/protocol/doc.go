// Package protocol implements the binary wire format spoken between the
// thin client and a widget session.
//
// Every WebSocket message is one frame:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// Payloads use unsigned varints for counts and sizes and varint
// length-prefixed UTF-8 for strings.
//
// # Events (client → server)
//
//	seq:uvarint type:byte target:string payload
//
// Click, DragOver, DragLeave and Submit carry no payload. Change and Drop
// carry a file list:
//
//	count:uvarint { name:string size:uvarint type:string tempID:string }*
//
// Files are staged over HTTP before the event is sent; tempID names the
// staged blob on the server.
//
// # Patches (server → client)
//
//	seq:uvarint count:uvarint { op:byte target:string [key:string] [value:string] }*
//
// Elements are addressed by their stable id attribute.
//
// # Control and errors
//
// Control frames carry ping/pong timestamps and close reasons. Error
// frames carry a code, a message and a fatal flag.
package protocol
