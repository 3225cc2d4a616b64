// Package session implements the document session: one loaded PDF, the
// current page and zoom, the active tool and colour, and the annotation
// layer drawn over the rendered page.
//
// Every user action maps to one method. Methods never leave the session in
// a broken state: a failure emits an error notice, returns an error and
// keeps the previous state. Rendering is synchronous inside the method that
// needs it, so a page image always matches the page and zoom it was
// requested for.
//
// Annotations live in page space (PDF points from the top-left corner of
// the media box). Points handed to Draw and Note are canvas pixels at the
// current zoom and are divided by the zoom before they are stored, so marks
// survive zoom changes.
//
// Unsaved marks sit on the canvas layer and are dropped by page navigation.
// Save commits them; committed marks are kept per page, drawn on every
// render of that page and included in PDF export together with the marks
// not yet saved.
package session
