// Package vdom provides the virtual node tree used to describe widget
// markup before it is rendered to HTML.
//
// Elements are built with variadic constructors that accept attributes,
// child nodes and strings in any order:
//
//	vdom.Div(vdom.ID("dz"), vdom.Class("dropzone"),
//	    vdom.P(vdom.Class("prompt"), "Drop an image here"),
//	)
//
// A nil argument is ignored, which keeps conditional markup terse:
//
//	vdom.Button(vdom.Disabled(view.SubmitDisabled), label)
package vdom
