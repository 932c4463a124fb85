package server

import (
	"reflect"
	"testing"

	"github.com/vango-dev/dropzone/pkg/protocol"
	"github.com/vango-dev/dropzone/pkg/widget"
)

func emptyView() widget.View {
	return widget.View{
		ShowPrompt:     true,
		SubmitDisabled: true,
		SubmitLabel:    "Upload",
	}
}

func TestDiff_NoChangeNoPatches(t *testing.T) {
	v := emptyView()
	if got := Diff(v, v); len(got) != 0 {
		t.Fatalf("Diff(v, v) = %v, want no patches", got)
	}
}

func TestDiff_Transitions(t *testing.T) {
	selected := widget.View{
		ShowPreview: true,
		PreviewSrc:  "data:image/png;base64,aGk=",
		FileName:    "photo.png",
		SubmitLabel: "Upload",
		InputValue:  "tmp-1",
	}
	rejected := emptyView()
	rejected.ErrorVisible = true
	rejected.ErrorText = widget.MsgInvalidType

	tests := []struct {
		name string
		prev widget.View
		next widget.View
		want []protocol.Patch
	}{
		{
			name: "drag enter",
			prev: emptyView(),
			next: func() widget.View { v := emptyView(); v.DragOver = true; return v }(),
			want: []protocol.Patch{protocol.NewAddClassPatch(widget.IDZone, widget.ClassDragOver)},
		},
		{
			name: "drag leave",
			prev: func() widget.View { v := emptyView(); v.DragOver = true; return v }(),
			next: emptyView(),
			want: []protocol.Patch{protocol.NewRemoveClassPatch(widget.IDZone, widget.ClassDragOver)},
		},
		{
			name: "preview ready",
			prev: emptyView(),
			next: selected,
			want: []protocol.Patch{
				protocol.NewSetAttrPatch(widget.IDImage, "src", selected.PreviewSrc),
				protocol.NewSetTextPatch(widget.IDName, "photo.png"),
				protocol.NewSetAttrPatch(widget.IDPrompt, "hidden", ""),
				protocol.NewRemoveAttrPatch(widget.IDPreview, "hidden"),
				protocol.NewSetValuePatch(widget.IDTemp, "tmp-1"),
				protocol.NewRemoveAttrPatch(widget.IDSubmit, "disabled"),
			},
		},
		{
			name: "rejected after selection",
			prev: selected,
			next: rejected,
			want: []protocol.Patch{
				protocol.NewRemoveAttrPatch(widget.IDImage, "src"),
				protocol.NewSetTextPatch(widget.IDName, ""),
				protocol.NewRemoveAttrPatch(widget.IDPrompt, "hidden"),
				protocol.NewSetAttrPatch(widget.IDPreview, "hidden", ""),
				protocol.NewSetTextPatch(widget.IDError, widget.MsgInvalidType),
				protocol.NewRemoveAttrPatch(widget.IDError, "hidden"),
				protocol.NewSetValuePatch(widget.IDTemp, ""),
				protocol.NewSetValuePatch(widget.IDInput, ""),
				protocol.NewSetAttrPatch(widget.IDSubmit, "disabled", ""),
			},
		},
		{
			name: "submitting",
			prev: selected,
			next: func() widget.View {
				v := selected
				v.Submitting = true
				v.SubmitDisabled = true
				v.SubmitLabel = "Uploading..."
				return v
			}(),
			want: []protocol.Patch{
				protocol.NewSetTextPatch(widget.IDSubmit, "Uploading..."),
				protocol.NewSetAttrPatch(widget.IDSubmit, "disabled", ""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.prev, tt.next)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Diff() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestEffectPatches(t *testing.T) {
	got := EffectPatches([]widget.Effect{widget.EffectOpenPicker, widget.EffectSubmitForm})
	want := []protocol.Patch{
		protocol.NewDispatchPatch(widget.IDInput, "click"),
		protocol.NewDispatchPatch(widget.IDForm, "submit"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EffectPatches() = %v, want %v", got, want)
	}
	if got := EffectPatches(nil); got != nil {
		t.Fatalf("EffectPatches(nil) = %v, want nil", got)
	}
}
