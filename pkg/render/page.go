package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/dropzone/pkg/vdom"
)

// Default thin client paths.
const (
	DefaultClientScript = "/_dz/client.js"
	DefaultSocketPath   = "/_dz/ws"
)

// PageData contains everything needed to render a complete document.
type PageData struct {
	// Body is the root node of the page content.
	Body *vdom.VNode

	// Title is the document title.
	Title string

	// Styles are inline CSS blocks written into the head.
	Styles []string

	// SocketPath is the WebSocket path the client connects to.
	// Default: DefaultSocketPath
	SocketPath string

	// ClientScript is the thin client path.
	// Default: DefaultClientScript
	ClientScript string

	// Lang is the html lang attribute.
	// Default: "en"
	Lang string
}

// RenderPage renders a complete HTML document to w.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	script := page.ClientScript
	if script == "" {
		script = DefaultClientScript
	}
	socket := page.SocketPath
	if socket == "" {
		socket = DefaultSocketPath
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "<body data-dz-ws=\"%s\">\n", escapeAttr(socket)); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n<script src=\"%s\" defer></script>\n", escapeAttr(script)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n<meta charset=\"utf-8\">\n"+
		"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, css := range page.Styles {
		if _, err := fmt.Fprintf(w, "<style>%s</style>\n", css); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</head>\n")
	return err
}
