// Package render turns vdom trees into HTML.
//
// Output is deterministic: attributes are written in sorted order, so the
// same tree always produces the same bytes. Text is HTML-escaped and
// attribute values are attribute-escaped; only vdom.Raw bypasses escaping.
//
// RenderPage wraps a body tree in a complete document and appends the
// thin client script that connects the page back to its session.
package render
