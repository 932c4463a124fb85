package widget

import (
	"strings"

	"github.com/vango-dev/dropzone/pkg/vdom"
)

// Stable element IDs. The client routes events by these IDs and the
// server addresses patches to them.
const (
	IDForm    = "dz-form"
	IDZone    = "dz"
	IDInput   = "dz-input"
	IDPrompt  = "dz-prompt"
	IDPreview = "dz-preview"
	IDImage   = "dz-img"
	IDName    = "dz-name"
	IDClear   = "dz-clear"
	IDTemp    = "dz-temp"
	IDError   = "dz-error"
	IDSubmit  = "dz-submit"
)

// ClassDragOver is toggled on the drop zone while a drag hovers over it.
const ClassDragOver = "dragover"

// TempField is the form field carrying the staged upload ID.
const TempField = "image_temp_id"

// MarkupConfig controls the static parts of the widget markup.
type MarkupConfig struct {
	// Action is the form submission URL.
	// Default: "/submit"
	Action string

	// StageURL is where the client stages a chosen file before reporting it.
	// Default: "/upload/stage"
	StageURL string

	// Rules supply the accept list and the size hint.
	Rules Rules
}

// Markup builds the widget tree for v.
func Markup(v View, cfg MarkupConfig) *vdom.VNode {
	action := cfg.Action
	if action == "" {
		action = "/submit"
	}
	stage := cfg.StageURL
	if stage == "" {
		stage = "/upload/stage"
	}

	return vdom.Form(
		vdom.ID(IDForm),
		vdom.Class("dz-form"),
		vdom.Action(action),
		vdom.Method("post"),
		vdom.NoValidate(true),
		vdom.Data("dz-stage", stage),

		vdom.Div(
			vdom.ID(IDZone),
			vdom.Class("dropzone", vdom.ClassIf(v.DragOver, ClassDragOver)),
			vdom.Data("dz-drop", "true"),
			vdom.Role("button"),
			vdom.TabIndex(0),
			vdom.AriaLabel("Choose an image to upload"),

			vdom.Input(
				vdom.ID(IDInput),
				vdom.Type("file"),
				vdom.Accept(acceptList(cfg.Rules)),
				vdom.Hidden(true),
			),

			vdom.Div(
				vdom.ID(IDPrompt),
				vdom.Class("dz-prompt"),
				vdom.Hidden(!v.ShowPrompt),
				vdom.P(vdom.Strong("Drag and drop an image here")),
				vdom.P("or click to browse"),
				vdom.Span(vdom.Class("dz-hint"), "JPG or PNG, up to "+formatMB(cfg.Rules.maxSize())+"MB"),
			),

			vdom.Div(
				vdom.ID(IDPreview),
				vdom.Class("dz-preview"),
				vdom.Hidden(!v.ShowPreview),
				vdom.Img(vdom.ID(IDImage), vdom.Src(v.PreviewSrc), vdom.Alt("Selected image preview")),
				vdom.Span(vdom.ID(IDName), vdom.Class("dz-name"), v.FileName),
				vdom.Button(
					vdom.ID(IDClear),
					vdom.Type("button"),
					vdom.Class("dz-clear"),
					vdom.AriaLabel("Remove image"),
					"Remove",
				),
			),
		),

		vdom.Input(
			vdom.ID(IDTemp),
			vdom.Type("hidden"),
			vdom.Name(TempField),
			vdom.Value(v.InputValue),
		),

		vdom.P(
			vdom.ID(IDError),
			vdom.Class("dz-error"),
			vdom.Role("alert"),
			vdom.AriaLive("polite"),
			vdom.Hidden(!v.ErrorVisible),
			v.ErrorText,
		),

		vdom.Button(
			vdom.ID(IDSubmit),
			vdom.Type("submit"),
			vdom.Class("dz-submit"),
			vdom.Disabled(v.SubmitDisabled),
			v.SubmitLabel,
		),
	)
}

// acceptList returns the picker's accept attribute. image/jpg is not a
// registered type, so it is left to the declared-type check.
func acceptList(r Rules) string {
	types := make([]string, 0, len(r.allowedTypes()))
	for _, t := range r.allowedTypes() {
		if t == "image/jpg" {
			continue
		}
		types = append(types, t)
	}
	return strings.Join(types, ",")
}
