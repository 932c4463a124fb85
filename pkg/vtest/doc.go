// Package vtest provides testing helpers for the upload widget.
//
// The helpers let widget behavior be tested headless: a manual event loop
// stands in for the session goroutine, fake files stand in for staged
// uploads, and render assertions check the produced markup.
//
// # Quick Start
//
//	func TestSelect(t *testing.T) {
//	    loop := vtest.NewLoop()
//	    w := widget.New(loop)
//
//	    w.HandleFile(vtest.PNG("scan.png", 2048))
//	    loop.WaitAndRun(t, 1)
//
//	    vtest.ExpectVisible(t, widget.Markup(w.View(), widget.MarkupConfig{}), widget.IDPreview)
//	}
//
// # Manual Event Loop
//
// Loop queues dispatched callbacks instead of running them, so a test
// decides exactly when an async completion lands:
//
//	w.HandleFile(first)
//	w.HandleFile(second)
//	loop.WaitAndRun(t, 2) // both completions, in arrival order
//
// # Fake Files
//
// File implements the widget's FileHandle. Block holds Open until the
// channel is closed, which is how tests keep a decode in flight.
package vtest
