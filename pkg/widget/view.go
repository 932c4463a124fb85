package widget

// Labels are the texts of the submit control.
type Labels struct {
	Submit  string
	Loading string
}

// DefaultLabels returns the default submit labels.
func DefaultLabels() Labels {
	return Labels{
		Submit:  "Upload Image",
		Loading: "Uploading...",
	}
}

// View is the visible contract of the widget: which regions are shown,
// what they contain, and whether the submit control is usable.
// Prompt and preview are mutually exclusive.
type View struct {
	DragOver       bool
	ShowPrompt     bool
	ShowPreview    bool
	PreviewSrc     string
	FileName       string
	ErrorVisible   bool
	ErrorText      string
	SubmitDisabled bool
	Submitting     bool
	SubmitLabel    string

	// InputValue is the value carried by the form control on submission.
	InputValue string
}
