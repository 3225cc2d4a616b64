package report

import (
	"io"
	"strconv"

	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in GitHub-flavoured Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.MarkupReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeMeasurements(md, report)
	w.writeNotes(md, report)
	w.writeExports(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.MarkupReport) {
	md.H1("Drawtopia Markup Report")
	md.PlainText("")

	rows := [][]string{
		{"Document", "`" + report.Document + "`"},
	}
	if report.Title != "" {
		rows = append(rows, []string{"Title", report.Title})
	}
	if report.Author != "" {
		rows = append(rows, []string{"Author", report.Author})
	}
	rows = append(rows,
		[]string{"Pages", strconv.Itoa(report.PageCount)},
		[]string{"Processed", report.DateProcessed.Format(timeLayout)},
		[]string{"Status", statusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusText(report *model.MarkupReport) string {
	switch {
	case report.Cancelled:
		return "⚠️ " + status(report)
	case report.HasErrors():
		return "❌ " + status(report)
	default:
		return "✅ " + status(report)
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.MarkupReport) {
	md.H2("Annotations")
	md.PlainText("")

	counts := report.CountByTool()
	if len(counts) == 0 {
		md.PlainText("No annotations were placed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(counts)+1)
	for _, c := range counts {
		rows = append(rows, []string{c.Tool.Title(), strconv.Itoa(c.Count)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(report.Annotations)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Tool", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, counts)
}

// writePieChart writes a mermaid pie chart of annotations per tool.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts []model.ToolCount) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Annotations by Tool"),
		piechart.WithShowData(true),
	)
	for _, c := range counts {
		chart.LabelAndIntValue(c.Tool.Title(), uint64(c.Count)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeMeasurements(md *markdown.Markdown, report *model.MarkupReport) {
	measurements := report.Measurements()
	if len(measurements) == 0 {
		return
	}

	md.H2("Measurements")
	md.PlainText("")

	rows := make([][]string, len(measurements))
	for i, a := range measurements {
		rows[i] = []string{
			strconv.Itoa(a.Page),
			strconv.Itoa(a.ID),
			a.Tool.Title(),
			a.Measurement.Label,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "ID", "Tool", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeNotes writes each note body as a collapsible block.
func (w *MarkdownWriter) writeNotes(md *markdown.Markdown, report *model.MarkupReport) {
	var notes []model.Annotation
	for _, a := range report.Annotations {
		if a.Tool == model.ToolNote && a.Text != "" {
			notes = append(notes, a)
		}
	}
	if len(notes) == 0 {
		return
	}

	md.H2("Notes")
	md.PlainText("")
	for _, a := range notes {
		md.Details("Note #"+strconv.Itoa(a.ID)+" (page "+strconv.Itoa(a.Page)+")", a.Text)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeExports(md *markdown.Markdown, report *model.MarkupReport) {
	if len(report.Exports) == 0 {
		return
	}

	md.H2("Exports")
	md.PlainText("")

	items := make([]string, len(report.Exports))
	for i, path := range report.Exports {
		items[i] = "`" + path + "`"
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.MarkupReport) {
	switch {
	case report.HasErrors():
		md.Cautionf("%d step(s) failed during the run.", len(report.Errors))
		md.PlainText("")
		md.BulletList(report.Errors...)
	case report.Cancelled:
		md.Warningf("The run was cancelled after %d step(s).", len(report.PerformedSteps))
	case len(report.Annotations) == 0:
		md.Note("The run finished without placing any annotation.")
	default:
		md.Tip("All steps completed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [drawtopia](https://github.com/nao1215/drawtopia)*")
}
