// Package widget implements the single-image upload widget that backs a
// dropzone form.
//
// The widget owns one SelectionState and mediates between raw input events
// (clicks, drag events, native picker changes, form submission) and the
// visible UI. It is transport-agnostic: a session feeds it events, reads
// its View after every handler, and turns queued Effects into client
// commands.
//
// # Lifecycle
//
//	Empty --HandleFile(valid)--> Decoding --decode ok--> Selected
//	Empty/Decoding/Selected --HandleFile(invalid)--> Empty (error shown)
//	Decoding/Selected --Reset--> Empty
//	Empty --Submit--> rejected (error shown)
//	Decoding/Selected --Submit--> form released, submit disabled
//
// # Threading
//
// An UploadWidget is not safe for concurrent use. All methods must be
// called from the goroutine that owns it (the session event loop). The
// preview decode runs on its own goroutine and re-enters the owner through
// the Dispatcher passed to New; completions from superseded decodes are
// dropped by generation.
//
// # Usage
//
//	w := widget.New(session, widget.WithRules(widget.DefaultRules()))
//	w.Drop(files)          // validates and starts the preview decode
//	view := w.View()       // render or diff
//	for _, fx := range w.TakeEffects() {
//	    // open the picker, release the form, ...
//	}
package widget
