package report

import (
	"io"

	"github.com/nao1215/drawtopia/internal/model"
)

// Writer writes a markup report to its destination.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.MarkupReport) (int, error)
}

// MultiWriter writes every report to several Writers.
// Reports are not raw bytes, so io.MultiWriter does not fit.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.MarkupReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll writes each report in turn with w.
func WriteAll(w Writer, reports []*model.MarkupReport) (int, error) {
	var total int
	for _, r := range reports {
		if r == nil {
			continue
		}
		n, err := w.Write(r)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// status is the one-line outcome of a run.
func status(report *model.MarkupReport) string {
	switch {
	case report.Cancelled:
		return "Cancelled (partial results)"
	case report.HasErrors():
		return "Completed with errors"
	default:
		return "Complete"
	}
}

const timeLayout = "2006-01-02 15:04:05 MST"
