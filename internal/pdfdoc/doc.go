// Package pdfdoc reads PDF documents and writes them back with drawtopia
// annotations embedded, using pdfcpu.
//
// Read parses and validates a document once and records what the session
// needs: page count, page boxes, the information dictionary and a sha3-256
// fingerprint of the bytes. The original bytes are kept so that Export can
// start each write from a pristine copy.
//
// Export turns every model.Annotation into a real PDF annotation (Ink,
// Polygon, PolyLine, Line, Circle or Text) with an appearance stream, so
// the marks render the same in viewers that ignore annotation semantics.
package pdfdoc
