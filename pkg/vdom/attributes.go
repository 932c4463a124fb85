package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining non-empty classes with spaces.
func Class(classes ...string) Attr {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return attr("class", strings.Join(parts, " "))
}

// Data creates a data-* attribute.
// Example: Data("dz-drop", "true") → data-dz-drop="true"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLive sets the aria-live attribute.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// Form attributes

func Type(t string) Attr      { return attr("type", t) }
func Name(n string) Attr      { return attr("name", n) }
func Value(v string) Attr     { return attr("value", v) }
func Accept(a string) Attr    { return attr("accept", a) }
func Action(a string) Attr    { return attr("action", a) }
func Method(m string) Attr    { return attr("method", m) }
func EncType(e string) Attr   { return attr("enctype", e) }
func Src(s string) Attr       { return attr("src", s) }
func Alt(a string) Attr       { return attr("alt", a) }
func TabIndex(i int) Attr     { return attr("tabindex", i) }
func Hidden(h bool) Attr      { return attr("hidden", h) }
func Disabled(d bool) Attr    { return attr("disabled", d) }
func Multiple(m bool) Attr    { return attr("multiple", m) }
func NoValidate(n bool) Attr  { return attr("novalidate", n) }
func StyleAttr(s string) Attr { return attr("style", s) }

// Attrs is an escape hatch for arbitrary attributes.
func Attrs(key string, value any) Attr { return attr(key, value) }
