package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nao1215/drawtopia/internal/config"
	"github.com/nao1215/drawtopia/internal/database"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/pdfdoc"
	"github.com/nao1215/drawtopia/internal/report"
	"github.com/spf13/cobra"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [fingerprint|file]",
		Short: "Show recorded annotate runs",
		Long: `History lists what the export journal recorded about earlier
'drawtopia annotate' runs.

Without arguments it lists every document in the journal. With a
fingerprint, a document name or the path of a PDF (which is fingerprinted),
it lists the runs of that document, newest first.

Examples:
  # List documents in the journal
  drawtopia history

  # Runs of a document
  drawtopia history plan.pdf

  # Files exported for a document
  drawtopia history --exports plan.pdf

  # Show the full report of run 12
  drawtopia history --show 12 --markdown

  # Show the newest report of a document
  drawtopia history --latest plan.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("show", "i", 0, "Print the report stored for a run ID")
	cmd.Flags().BoolP("exports", "e", false, "List exported files instead of runs")
	cmd.Flags().BoolP("latest", "l", false, "Print the newest report of the document")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output the --show or --latest report as Markdown")
	cmd.Flags().String("db-dir", "", "Export journal directory (default: XDG data directory)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	exports, err := cmd.Flags().GetBool("exports")
	if err != nil {
		return err
	}
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if (exports || latest) && len(args) == 0 {
		return errors.New("--exports and --latest need a fingerprint, document name or file")
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Opening without create keeps a first 'history' from leaving an
	// empty journal behind.
	journal, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Use 'drawtopia annotate' to create some.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open export journal: %w", err)
	}
	defer journal.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case showID != 0:
		r, err := journal.ReportByID(ctx, showID)
		if err != nil {
			return err
		}
		return writeStoredReport(r, out, jsonOutput, markdownOutput)
	case len(args) == 0:
		return listDocuments(ctx, journal, out, jsonOutput)
	}

	key := historyKey(args[0])
	switch {
	case latest:
		r, err := journal.LatestReport(ctx, key)
		if err != nil {
			return err
		}
		return writeStoredReport(r, out, jsonOutput, markdownOutput)
	case exports:
		return listExports(ctx, journal, key, out, jsonOutput)
	default:
		return listRuns(ctx, journal, key, out, jsonOutput)
	}
}

// historyKey turns a readable PDF path into its fingerprint. Anything else
// is used as given: a fingerprint or a document name.
func historyKey(arg string) string {
	data, err := os.ReadFile(arg) //nolint:gosec // user-chosen document path
	if err != nil {
		return arg
	}
	return pdfdoc.Fingerprint(data)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listDocuments(ctx context.Context, journal *database.Journal, out io.Writer, jsonOutput bool) error {
	docs, err := journal.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, docs)
	}

	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents in the export journal.")
		return nil
	}

	fmt.Fprintf(out, "Annotated documents (%d):\n\n", len(docs))
	fmt.Fprintf(out, "  %-30s  %-12s  %-4s  %s\n", "Document", "Fingerprint", "Runs", "Last run")
	for _, d := range docs {
		fmt.Fprintf(out, "  %-30s  %-12s  %-4d  %s\n",
			d.Document, shortFingerprint(d.Fingerprint), d.Runs, d.LastRun.Local().Format(historyTimeLayout))
	}
	return nil
}

func listRuns(ctx context.Context, journal *database.Journal, key string, out io.Writer, jsonOutput bool) error {
	runs, err := journal.History(ctx, key)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs recorded for %s\n", key)
		return nil
	}

	fmt.Fprintf(out, "Runs of %s (%d):\n\n", runs[0].Document, len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %-5s  %-11s  %-12s  %s\n",
		"ID", "Date", "Pages", "Annotations", "Measurements", "Errors")
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-19s  %-5d  %-11d  %-12d  %d\n",
			r.ID, r.Timestamp.Local().Format(historyTimeLayout), r.PageCount, r.Annotations, r.Measurements, r.Errors)
	}
	return nil
}

func listExports(ctx context.Context, journal *database.Journal, key string, out io.Writer, jsonOutput bool) error {
	records, err := journal.Exports(ctx, key)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No exports recorded for %s\n", key)
		return nil
	}

	fmt.Fprintf(out, "  %-6s  %-19s  %-5s  %s\n", "Run", "Date", "Kind", "Path")
	for _, r := range records {
		fmt.Fprintf(out, "  %-6d  %-19s  %-5s  %s\n",
			r.RunID, r.Timestamp.Local().Format(historyTimeLayout), r.Kind, r.Path)
	}
	return nil
}

// writeStoredReport prints a report loaded from the journal in full.
func writeStoredReport(r *model.MarkupReport, out io.Writer, jsonOutput, markdownOutput bool) error {
	var w report.Writer
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOutput:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(true))
	}
	_, err := w.Write(r)
	return err
}

func shortFingerprint(fp string) string {
	if fp == "" {
		return "-"
	}
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
