package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/dropzone/pkg/render"
	"github.com/vango-dev/dropzone/pkg/vdom"
)

// RenderToString renders a VNode to HTML for testing.
// Returns an empty string if rendering fails.
func RenderToString(node *vdom.VNode) string {
	html, err := render.NewRenderer().RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that the rendered output contains text.
//
// Example:
//
//	vtest.ExpectContains(t, tree, "Upload Image")
func ExpectContains(t *testing.T, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered output does not contain text.
func ExpectNotContains(t *testing.T, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectAttribute asserts that the element with the given id has attr=value.
//
// Example:
//
//	vtest.ExpectAttribute(t, tree, "dz-temp", "value", "abc")
func ExpectAttribute(t *testing.T, node *vdom.VNode, id, attr, value string) {
	t.Helper()
	el := mustFind(t, node, id)
	if el == nil {
		return
	}
	if got, _ := el.Props[attr].(string); got != value {
		t.Errorf("#%s: expected %s=%q, got %q", id, attr, value, got)
	}
}

// ExpectHidden asserts that the element with the given id is hidden.
func ExpectHidden(t *testing.T, node *vdom.VNode, id string) {
	t.Helper()
	if el := mustFind(t, node, id); el != nil && !flag(el, "hidden") {
		t.Errorf("#%s: expected hidden", id)
	}
}

// ExpectVisible asserts that the element with the given id is not hidden.
func ExpectVisible(t *testing.T, node *vdom.VNode, id string) {
	t.Helper()
	if el := mustFind(t, node, id); el != nil && flag(el, "hidden") {
		t.Errorf("#%s: expected visible", id)
	}
}

// ExpectDisabled asserts the disabled state of the element with the given id.
func ExpectDisabled(t *testing.T, node *vdom.VNode, id string, disabled bool) {
	t.Helper()
	if el := mustFind(t, node, id); el != nil && flag(el, "disabled") != disabled {
		t.Errorf("#%s: expected disabled=%v", id, disabled)
	}
}

// ExpectText asserts the concatenated text content of the element with
// the given id.
func ExpectText(t *testing.T, node *vdom.VNode, id, text string) {
	t.Helper()
	el := mustFind(t, node, id)
	if el == nil {
		return
	}
	if got := TextContent(el); got != text {
		t.Errorf("#%s: expected text %q, got %q", id, text, got)
	}
}

// TextContent returns the concatenated text of node and its descendants.
func TextContent(node *vdom.VNode) string {
	if node == nil {
		return ""
	}
	if node.Kind == vdom.KindText {
		return node.Text
	}
	var sb strings.Builder
	for _, c := range node.Children {
		sb.WriteString(TextContent(c))
	}
	return sb.String()
}

func mustFind(t *testing.T, node *vdom.VNode, id string) *vdom.VNode {
	t.Helper()
	el := node.Find(id)
	if el == nil {
		t.Errorf("element #%s not found", id)
	}
	return el
}

func flag(el *vdom.VNode, key string) bool {
	b, _ := el.Props[key].(bool)
	return b
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
