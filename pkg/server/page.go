package server

import (
	"bytes"
	"net/http"

	"github.com/vango-dev/dropzone/pkg/render"
	"github.com/vango-dev/dropzone/pkg/vdom"
	"github.com/vango-dev/dropzone/pkg/widget"
)

const pageCSS = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2328}
main{max-width:32rem;margin:3rem auto;padding:0 1rem}
.dropzone{border:2px dashed #9aa4b2;border-radius:.75rem;padding:2rem;text-align:center;cursor:pointer;background:#fff}
.dropzone.dragover{border-color:#2f6feb;background:#eef4ff}
.dz-hint{color:#6e7781;font-size:.875rem}
.dz-preview img{max-width:100%;max-height:16rem;border-radius:.5rem}
.dz-name{display:block;margin:.5rem 0;word-break:break-all}
.dz-error{color:#cf222e}
.dz-submit{margin-top:1rem;padding:.6rem 1.2rem}
[hidden]{display:none!important}`

// pageBody wraps the widget markup for v in the page layout.
func (s *Server) pageBody(v widget.View, notice string) *vdom.VNode {
	return vdom.Main(
		vdom.H1(s.config.Heading),
		vdom.If(notice != "", vdom.P(vdom.Class("dz-notice"), vdom.Role("status"), notice)),
		widget.Markup(v, s.config.markup()),
	)
}

// initialView is the view a fresh session starts from.
func (s *Server) initialView() widget.View {
	return widget.New(nil, widget.WithRules(s.config.Rules), widget.WithLabels(s.config.Labels)).View()
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	var notice string
	if id := r.URL.Query().Get("upload"); id != "" {
		notice = "Upload received: " + id
	}

	var buf bytes.Buffer
	err := s.renderer.RenderPage(&buf, render.PageData{
		Body:   s.pageBody(s.initialView(), notice),
		Title:  s.config.Title,
		Styles: []string{pageCSS},
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
