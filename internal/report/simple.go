package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/drawtopia/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have nothing in them.
	showEmpty bool

	// verbose adds annotation and notice detail.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose lists every annotation and notice.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.MarkupReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeMeasurements(&sb, report)
	w.writeAnnotations(&sb, report)
	w.writeExports(&sb, report)
	w.writeNotices(&sb, report)
	w.writeErrors(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.MarkupReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        DRAWTOPIA MARKUP REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Document:     %s\n", report.Document)
	if report.Title != "" {
		fmt.Fprintf(sb, "Title:        %s\n", report.Title)
	}
	if report.Author != "" {
		fmt.Fprintf(sb, "Author:       %s\n", report.Author)
	}
	fmt.Fprintf(sb, "Pages:        %d\n", report.PageCount)
	fmt.Fprintf(sb, "Processed:    %s\n", report.DateProcessed.Format(timeLayout))
	if w.verbose && report.Fingerprint != "" {
		fmt.Fprintf(sb, "Fingerprint:  %s\n", report.Fingerprint)
	}
	fmt.Fprintf(sb, "Status:       %s\n", status(report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.MarkupReport) {
	section(sb, "ANNOTATIONS BY TOOL")

	counts := report.CountByTool()
	if len(counts) == 0 {
		sb.WriteString("  No annotations\n\n")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(sb, "  %-14s %d\n", c.Tool.Title()+":", c.Count)
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  %-14s %d\n\n", "TOTAL:", len(report.Annotations))
}

func (w *SimpleWriter) writeMeasurements(sb *strings.Builder, report *model.MarkupReport) {
	measurements := report.Measurements()
	if len(measurements) == 0 && !w.showEmpty {
		return
	}

	section(sb, "MEASUREMENTS")
	if len(measurements) == 0 {
		sb.WriteString("  No measurements\n\n")
		return
	}
	for _, a := range measurements {
		fmt.Fprintf(sb, "  [page %d] #%d %-10s %s\n", a.Page, a.ID, a.Tool.Title(), a.Measurement.Label)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeAnnotations(sb *strings.Builder, report *model.MarkupReport) {
	if !w.verbose || (len(report.Annotations) == 0 && !w.showEmpty) {
		return
	}

	section(sb, "ANNOTATIONS")
	for _, a := range report.Annotations {
		fmt.Fprintf(sb, "  * #%d page %d %s %s, %d point(s)\n", a.ID, a.Page, a.Tool.Title(), a.Color, len(a.Points))
		if label := a.Label(); label != "" {
			fmt.Fprintf(sb, "    %s\n", label)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeExports(sb *strings.Builder, report *model.MarkupReport) {
	if len(report.Exports) == 0 && !w.showEmpty {
		return
	}

	section(sb, "EXPORTS")
	if len(report.Exports) == 0 {
		sb.WriteString("  Nothing exported\n\n")
		return
	}
	for _, path := range report.Exports {
		fmt.Fprintf(sb, "  [+] %s\n", path)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeNotices(sb *strings.Builder, report *model.MarkupReport) {
	if !w.verbose || (len(report.Notices) == 0 && !w.showEmpty) {
		return
	}

	section(sb, "NOTICES")
	for _, n := range report.Notices {
		fmt.Fprintf(sb, "  [%s] %s\n", noticeIndicator(n.Level), n.Message)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.MarkupReport) {
	if !report.HasErrors() {
		return
	}

	section(sb, "ERRORS")
	for _, e := range report.Errors {
		fmt.Fprintf(sb, "  [!] %s\n", e)
	}
	sb.WriteString("\n")
}

func noticeIndicator(level model.NoticeLevel) string {
	switch level {
	case model.NoticeSuccess:
		return "+"
	case model.NoticeError:
		return "!"
	case model.NoticeInfo:
		return "i"
	default:
		return "?"
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by drawtopia\n")
	sb.WriteString("https://github.com/nao1215/drawtopia\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
