package server

import (
	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/widget"
)

// Diff returns the patches that turn the DOM rendered from prev into the
// DOM rendered from next. Equal views produce no patches.
func Diff(prev, next widget.View) []protocol.Patch {
	var patches []protocol.Patch

	if prev.DragOver != next.DragOver {
		if next.DragOver {
			patches = append(patches, protocol.NewAddClassPatch(widget.IDZone, widget.ClassDragOver))
		} else {
			patches = append(patches, protocol.NewRemoveClassPatch(widget.IDZone, widget.ClassDragOver))
		}
	}

	if prev.PreviewSrc != next.PreviewSrc {
		if next.PreviewSrc == "" {
			patches = append(patches, protocol.NewRemoveAttrPatch(widget.IDImage, "src"))
		} else {
			patches = append(patches, protocol.NewSetAttrPatch(widget.IDImage, "src", next.PreviewSrc))
		}
	}
	if prev.FileName != next.FileName {
		patches = append(patches, protocol.NewSetTextPatch(widget.IDName, next.FileName))
	}
	if prev.ShowPrompt != next.ShowPrompt {
		patches = append(patches, boolAttr(widget.IDPrompt, "hidden", !next.ShowPrompt))
	}
	if prev.ShowPreview != next.ShowPreview {
		patches = append(patches, boolAttr(widget.IDPreview, "hidden", !next.ShowPreview))
	}

	if prev.ErrorText != next.ErrorText {
		patches = append(patches, protocol.NewSetTextPatch(widget.IDError, next.ErrorText))
	}
	if prev.ErrorVisible != next.ErrorVisible {
		patches = append(patches, boolAttr(widget.IDError, "hidden", !next.ErrorVisible))
	}

	if prev.InputValue != next.InputValue {
		patches = append(patches, protocol.NewSetValuePatch(widget.IDTemp, next.InputValue))
		if next.InputValue == "" {
			patches = append(patches, protocol.NewSetValuePatch(widget.IDInput, ""))
		}
	}

	if prev.SubmitLabel != next.SubmitLabel {
		patches = append(patches, protocol.NewSetTextPatch(widget.IDSubmit, next.SubmitLabel))
	}
	if prev.SubmitDisabled != next.SubmitDisabled {
		patches = append(patches, boolAttr(widget.IDSubmit, "disabled", next.SubmitDisabled))
	}

	return patches
}

// EffectPatches translates widget effects into client dispatches.
func EffectPatches(effects []widget.Effect) []protocol.Patch {
	var patches []protocol.Patch
	for _, fx := range effects {
		switch fx {
		case widget.EffectOpenPicker:
			patches = append(patches, protocol.NewDispatchPatch(widget.IDInput, "click"))
		case widget.EffectSubmitForm:
			patches = append(patches, protocol.NewDispatchPatch(widget.IDForm, "submit"))
		}
	}
	return patches
}

func boolAttr(id, key string, on bool) protocol.Patch {
	if on {
		return protocol.NewSetAttrPatch(id, key, "")
	}
	return protocol.NewRemoveAttrPatch(id, key)
}
