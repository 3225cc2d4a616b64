package session

import (
	"errors"

	"github.com/nao1215/drawtopia/internal/pdfdoc"
)

var (
	// ErrNoDocument is returned by operations that need a loaded PDF.
	ErrNoDocument = errors.New("no PDF document loaded")

	// ErrNotPDF is returned when Load is given something other than a PDF.
	ErrNotPDF = pdfdoc.ErrNotPDF

	// ErrEmptyNote is returned when a note has no text.
	ErrEmptyNote = errors.New("note text is empty")

	// ErrInvalidZoom is returned for non-positive zoom values.
	ErrInvalidZoom = errors.New("zoom must be positive")
)

// User-facing messages.
const (
	msgNotPDF        = "Please upload a PDF file"
	msgNoDocument    = "Please upload a PDF file first"
	msgLoaded        = "PDF %q loaded successfully"
	msgLoadFailed    = "Failed to load PDF"
	msgRenderFailed  = "Failed to render page %d"
	msgToolSelected  = "%s tool selected"
	msgCleared       = "All annotations cleared"
	msgSaved         = "Annotations saved successfully"
	msgNothingToSave = "No new annotations to save"
	msgPNGSaved      = "Canvas saved as image"
	msgPNGFailed     = "Failed to save canvas"
	msgPDFSaved      = "PDF downloaded successfully"
	msgPDFFailed     = "Failed to download PDF"
	msgInvalidColor  = "Invalid color %q"
	msgDrawFailed    = "Cannot draw with %s: %v"
	msgUnknownTool   = "Unknown tool"
	msgEmptyNote     = "Note text is empty"
)
