package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/drawtopia/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the journal's file name inside its directory.
const FileName = "drawtopia.db"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Journal records annotate runs in SQLite.
type Journal struct {
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Journal behaviour.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the journal in dbDir.
// With CreateIfNotExists false a missing database is an error.
func Open(dbDir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return j, nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fingerprint TEXT NOT NULL,
		document TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		page_count INTEGER NOT NULL DEFAULT 0,
		annotation_count INTEGER NOT NULL DEFAULT 0,
		measurement_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Files written by a run
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_run ON exports(run_id);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport records one run and the files it exported, and returns the
// run ID.
func (j *Journal) SaveReport(ctx context.Context, report *model.MarkupReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (fingerprint, document, timestamp, page_count,
		annotation_count, measurement_count, error_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Fingerprint,
		report.Document,
		formatTimestamp(report.DateProcessed),
		report.PageCount,
		len(report.Annotations),
		len(report.Measurements()),
		len(report.Errors),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, path := range report.Exports {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO exports (run_id, path, kind) VALUES (?, ?, ?)",
			id, path, ExportKind(path),
		); err != nil {
			return 0, fmt.Errorf("failed to save export %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ExportKind classifies an exported file by extension: "pdf", "png" or
// "other".
func ExportKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "pdf"
	case ".png":
		return "png"
	default:
		return "other"
	}
}

// RunMetadata summarises one run without loading its report.
type RunMetadata struct {
	ID           int64
	Fingerprint  string
	Document     string
	Timestamp    time.Time
	PageCount    int
	Annotations  int
	Measurements int
	Errors       int
}

// History returns the runs of a document, newest first. key is matched
// against both the fingerprint and the document name.
func (j *Journal) History(ctx context.Context, key string) ([]RunMetadata, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT id, fingerprint, document, timestamp, page_count,
		annotation_count, measurement_count, error_count
	FROM runs
	WHERE fingerprint = ? OR document = ?
	ORDER BY timestamp DESC, id DESC
	`, key, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta      RunMetadata
			timestamp string
		)
		if err := rows.Scan(&meta.ID, &meta.Fingerprint, &meta.Document, &timestamp,
			&meta.PageCount, &meta.Annotations, &meta.Measurements, &meta.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// DocumentSummary is one distinct document in the journal.
type DocumentSummary struct {
	Fingerprint string
	Document    string
	Runs        int
	LastRun     time.Time
}

// ListDocuments returns every document that has been annotated, ordered
// by name.
func (j *Journal) ListDocuments(ctx context.Context) ([]DocumentSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT fingerprint, document, COUNT(*), MAX(timestamp)
	FROM runs
	GROUP BY fingerprint, document
	ORDER BY document, fingerprint
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentSummary
	for rows.Next() {
		var (
			d       DocumentSummary
			lastRun string
		)
		if err := rows.Scan(&d.Fingerprint, &d.Document, &d.Runs, &lastRun); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.LastRun = parseTimestamp(lastRun)
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

// LatestReport returns the newest report for a fingerprint or document
// name.
func (j *Journal) LatestReport(ctx context.Context, key string) (*model.MarkupReport, error) {
	var reportJSON string
	err := j.db.QueryRowContext(ctx, `
	SELECT report_json FROM runs
	WHERE fingerprint = ? OR document = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`, key, key).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return decodeReport(reportJSON)
}

// ReportByID returns the report stored for run id.
func (j *Journal) ReportByID(ctx context.Context, id int64) (*model.MarkupReport, error) {
	var reportJSON string
	err := j.db.QueryRowContext(ctx, "SELECT report_json FROM runs WHERE id = ?", id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return decodeReport(reportJSON)
}

func decodeReport(reportJSON string) (*model.MarkupReport, error) {
	var report model.MarkupReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ExportRecord is a file written by a run.
type ExportRecord struct {
	RunID     int64
	Path      string
	Kind      string
	Timestamp time.Time
}

// Exports lists the files written for a fingerprint or document name,
// newest run first.
func (j *Journal) Exports(ctx context.Context, key string) ([]ExportRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT e.run_id, e.path, e.kind, r.timestamp
	FROM exports e JOIN runs r ON r.id = e.run_id
	WHERE r.fingerprint = ? OR r.document = ?
	ORDER BY r.timestamp DESC, r.id DESC, e.id
	`, key, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var records []ExportRecord
	for rows.Next() {
		var (
			rec       ExportRecord
			timestamp string
		)
		if err := rows.Scan(&rec.RunID, &rec.Path, &rec.Kind, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		rec.Timestamp = parseTimestamp(timestamp)
		records = append(records, rec)
	}

	return records, rows.Err()
}

const storedTimestamp = "2006-01-02 15:04:05.000"

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(storedTimestamp)
}

// timestampFormats are the layouts the driver may hand back; more specific
// layouts come first.
var timestampFormats = []string{
	storedTimestamp,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
