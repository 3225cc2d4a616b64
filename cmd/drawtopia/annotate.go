package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/drawtopia/internal/config"
	"github.com/nao1215/drawtopia/internal/database"
	applog "github.com/nao1215/drawtopia/internal/log"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/notify"
	"github.com/nao1215/drawtopia/internal/pipeline"
	"github.com/nao1215/drawtopia/internal/report"
	"github.com/nao1215/drawtopia/internal/script"
	"github.com/nao1215/drawtopia/internal/session"
	"github.com/spf13/cobra"
)

// NewAnnotateCmd creates the annotate command.
func NewAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <pdf>...",
		Short: "Apply a markup script to PDF documents",
		Long: `Annotate loads each PDF into its own session and runs a markup script
against it: select tools and colours, draw, place notes, zoom, turn pages,
save, and export pages as PNG or the document as an annotated PDF.

A report is printed for every document and each run is recorded in the
export journal (see 'drawtopia history').

Script example (markup.yaml):
  name: door check
  steps:
    - tool: length
    - color: Red
    - draw: [[100, 120], [340, 120]]
    - save
    - page: next
    - tool: note
    - note: {at: [50, 60], text: "check clearance"}
    - save
    - export_png: "{name}-page-{page}.png"
    - export_pdf: "{name}-annotated.pdf"

Examples:
  # Annotate one document
  drawtopia annotate -s markup.yaml plan.pdf

  # Annotate many documents, four at a time, exports under out/
  drawtopia annotate -s markup.yaml --batch 4 --out-dir out *.pdf

  # Write a Markdown report to a file
  drawtopia annotate -s markup.yaml --markdown -o report.md plan.pdf

  # One JSON report per line, in the order documents finish
  drawtopia annotate -s markup.yaml --json -o reports.jsonl *.pdf`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnnotateCmd,
	}

	cmd.Flags().StringP("script", "s", "", "Markup script (YAML)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .drawtopia in current or home directory)")

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of documents annotated concurrently")
	cmd.Flags().String("out-dir", "", "Base directory for relative export paths (default: from config, else .)")
	cmd.Flags().StringP("password", "p", "", "Password for encrypted PDFs")
	cmd.Flags().Bool("stop-on-error", false, "Stop a document's script at the first failing step")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON Lines, one report object per document (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false, "Do not print notifications while running")
	cmd.Flags().Bool("log-json", false, "Write logs to stderr as JSON")

	cmd.Flags().Bool("no-db", false, "Do not record runs in the export journal")
	cmd.Flags().String("db-dir", "", "Export journal directory (default: XDG data directory)")

	return cmd
}

func runAnnotateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if logJSON {
		logger = applog.NewJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}
	var notices io.Writer = cmd.ErrOrStderr()
	if quiet {
		notices = io.Discard
	}

	return runAnnotate(ctx, cfg, cmd.OutOrStdout(), notices, logger)
}

// buildConfig creates a Config from defaults, the configuration file and
// cobra flags, in that order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Documents = args

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit --config must exist; the implicit search may find nothing.
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if cfg.ScriptPath, err = cmd.Flags().GetString("script"); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return nil, err
	}
	if outDir != "" {
		cfg.OutDir = outDir
	}
	if cfg.Password, err = cmd.Flags().GetString("password"); err != nil {
		return nil, err
	}
	if cfg.StopOnError, err = cmd.Flags().GetBool("stop-on-error"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	return cfg, nil
}

// errDocumentsFailed is returned when at least one document's run
// recorded an error.
var errDocumentsFailed = errors.New("some documents had errors")

func runAnnotate(ctx context.Context, cfg *config.Config, stdout, notices io.Writer, logger *slog.Logger) error {
	s, err := script.Load(cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}

	logger.Info("starting annotate",
		"documents", len(cfg.Documents),
		"script", s.Name,
		"steps", len(s.Steps),
		"batch", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var journal *database.Journal
	if cfg.SaveToDB {
		journal, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open export journal: %w", err)
		}
		defer journal.Close()
		logger.Info("export journal opened", "path", journal.Path())
	}

	output, closeOutput, err := openReportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := newReportWriter(cfg, output)

	sessionOpts := slices.Clip(append(session.FromConfig(cfg), session.WithLogger(logger)))
	multi := len(cfg.Documents) > 1
	noticeWriter := notify.NewWriterNotifier(notices, "")

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.ScriptPipeline(s, cfg.StopOnError, pipeline.WithLogger(logger))
		},
		func(document string) *pipeline.Job {
			n := noticeWriter
			if multi {
				n = noticeWriter.WithPrefix(filepath.Base(document))
			}
			return pipeline.NewJob(document, cfg.OutDir, n, sessionOpts...)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	start := time.Now()
	var (
		mu     sync.Mutex
		failed int
	)
	err = bp.ProcessBatchWithCallback(ctx, cfg.Documents, func(r *model.MarkupReport, _ int) {
		mu.Lock()
		defer mu.Unlock()

		if r.HasErrors() || r.Cancelled {
			failed++
		}
		if _, err := writer.Write(r); err != nil {
			logger.Error("report failed", "document", r.Document, "error", err)
		}
		if err := saveRun(ctx, journal, r, logger); err != nil {
			logger.Error("failed to record run", "document", r.Document, "error", err)
		}
	})

	logger.Info("annotate complete",
		"documents", len(cfg.Documents),
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errDocumentsFailed, failed, len(cfg.Documents))
	}
	return nil
}

// openReportOutput returns the report destination: the named file, created
// with its directories, or stdout when path is empty.
func openReportOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-chosen report path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		// JSON Lines, one object per document.
		return report.NewFullJSONWriter(output, getVersion())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// saveRun records the report in the journal. A nil journal is a no-op.
func saveRun(ctx context.Context, journal *database.Journal, r *model.MarkupReport, logger *slog.Logger) error {
	if journal == nil {
		return nil
	}
	// A cancelled ctx must not lose the record of what already ran.
	id, err := journal.SaveReport(context.WithoutCancel(ctx), r)
	if err != nil {
		return err
	}
	logger.Info("run recorded", "document", r.Document, "id", id)
	return nil
}
