package model

import (
	"sort"
	"time"
)

// MarkupReport summarises one markup run over a document: what was drawn,
// what was measured, what was exported and what went wrong.
// It is written by the report writers and stored in the export journal.
type MarkupReport struct {
	// === Document ===

	// Document is the file name of the PDF.
	Document string `json:"document"`

	// Fingerprint is the hex sha3-256 digest of the PDF bytes.
	Fingerprint string `json:"fingerprint,omitempty"`

	// PageCount is the number of pages in the document.
	PageCount int `json:"page_count"`

	// Title and Author come from the document information dictionary.
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`

	// DateProcessed is when the run started.
	DateProcessed time.Time `json:"date_processed"`

	// === Session state at the end of the run ===

	// CurrentPage is the 1-based page shown when the run finished.
	CurrentPage int `json:"current_page"`

	// Zoom is the final viewport scale.
	Zoom float64 `json:"zoom"`

	// Annotations holds saved and current annotations, ordered by page then ID.
	Annotations []Annotation `json:"annotations,omitempty"`

	// === Outcome ===

	// Exports lists the files written during the run.
	Exports []string `json:"exports,omitempty"`

	// Notices is every notification emitted during the run.
	Notices []Notice `json:"notices,omitempty"`

	// PerformedSteps lists the step names executed, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Errors holds the messages of failed steps.
	Errors []string `json:"errors,omitempty"`

	// Cancelled is true when the run stopped before all steps ran.
	Cancelled bool `json:"cancelled"`
}

// NewMarkupReport creates an empty report for document.
func NewMarkupReport(document string) *MarkupReport {
	return &MarkupReport{
		Document:      document,
		DateProcessed: time.Now(),
	}
}

// AddError records a failed step.
func (r *MarkupReport) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// HasErrors reports whether any step failed.
func (r *MarkupReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// Measurements returns the annotations that carry a measurement.
func (r *MarkupReport) Measurements() []Annotation {
	var out []Annotation
	for _, a := range r.Annotations {
		if a.Measurement != nil {
			out = append(out, a)
		}
	}
	return out
}

// ToolCount is the number of annotations drawn with one tool.
type ToolCount struct {
	Tool  Tool
	Count int
}

// CountByTool returns annotation counts per tool in toolbar order,
// omitting tools with no annotations.
func (r *MarkupReport) CountByTool() []ToolCount {
	counts := make(map[Tool]int)
	for _, a := range r.Annotations {
		counts[a.Tool]++
	}

	var out []ToolCount
	for _, tool := range Tools() {
		if n := counts[tool]; n > 0 {
			out = append(out, ToolCount{Tool: tool, Count: n})
		}
	}
	return out
}

// SortAnnotations orders annotations by page, then by ID.
func SortAnnotations(annotations []Annotation) {
	sort.SliceStable(annotations, func(i, j int) bool {
		if annotations[i].Page != annotations[j].Page {
			return annotations[i].Page < annotations[j].Page
		}
		return annotations[i].ID < annotations[j].ID
	})
}
