package pdfdoc

import "errors"

var (
	// ErrNotPDF is returned when input is not a PDF document.
	ErrNotPDF = errors.New("not a PDF document")

	// ErrNoPages is returned for documents without pages.
	ErrNoPages = errors.New("document has no pages")

	// ErrPageOutOfRange is returned for page numbers outside [1, PageCount].
	ErrPageOutOfRange = errors.New("page out of range")
)
