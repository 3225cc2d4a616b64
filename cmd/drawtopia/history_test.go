package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/nao1215/drawtopia/internal/config"
	"github.com/nao1215/drawtopia/internal/database"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/pdfdoc"
)

// recordedFixture runs annotate twice on the same document so the journal
// holds two runs.
func recordedFixture(t *testing.T) annotateFixture {
	t.Helper()

	f := newAnnotateFixture(t)
	for range 2 {
		if _, _, err := execute(t, f.args(f.pdf)...); err != nil {
			t.Fatalf("annotate failed: %v", err)
		}
	}
	return f
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	f := recordedFixture(t)
	history := func(args ...string) (string, error) {
		stdout, _, err := execute(t, append([]string{"history", "--db-dir", f.dbDir}, args...)...)
		return stdout, err
	}

	t.Run("lists documents", func(t *testing.T) {
		t.Parallel()

		stdout, err := history()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Annotated documents (1)") || !strings.Contains(stdout, "plan.pdf") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("lists runs by file, name and fingerprint", func(t *testing.T) {
		t.Parallel()

		runs, err := database.Open(f.dbDir, database.Options{})
		if err != nil {
			t.Fatal(err)
		}
		docs, err := runs.ListDocuments(t.Context())
		_ = runs.Close()
		if err != nil || len(docs) != 1 {
			t.Fatalf("ListDocuments() = %+v, %v", docs, err)
		}

		for _, key := range []string{f.pdf, "plan.pdf", docs[0].Fingerprint} {
			stdout, err := history("--json", key)
			if err != nil {
				t.Fatalf("history %s: %v", key, err)
			}
			var got []database.RunMetadata
			if err := json.Unmarshal([]byte(stdout), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(got) != 2 {
				t.Errorf("history %s: %d runs, want 2", key, len(got))
			}
		}
	})

	t.Run("lists exports", func(t *testing.T) {
		t.Parallel()

		stdout, err := history("--exports", "plan.pdf")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(stdout, "plan-annotated.pdf") != 2 || !strings.Contains(stdout, "png") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("shows a stored report", func(t *testing.T) {
		t.Parallel()

		stdout, err := history("--json", "plan.pdf")
		if err != nil {
			t.Fatal(err)
		}
		var runs []database.RunMetadata
		if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
			t.Fatal(err)
		}

		stdout, err = history("--show", strconv.FormatInt(runs[0].ID, 10), "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var r model.MarkupReport
		if err := json.Unmarshal([]byte(stdout), &r); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(r.Annotations) != 2 {
			t.Errorf("stored report has %d annotations, want 2", len(r.Annotations))
		}

		stdout, err = history("--show", strconv.FormatInt(runs[0].ID, 10), "--markdown")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "## Measurements") {
			t.Errorf("expected markdown report, got:\n%s", stdout)
		}
	})

	t.Run("shows the latest report", func(t *testing.T) {
		t.Parallel()

		stdout, err := history("--latest", "plan.pdf")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "DRAWTOPIA MARKUP REPORT") || !strings.Contains(stdout, "plan.pdf") {
			t.Errorf("unexpected output:\n%s", stdout)
		}

		_, err = history("--latest", "elsewhere.pdf")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		_, err := history("--show", "9999")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown document", func(t *testing.T) {
		t.Parallel()

		stdout, err := history("elsewhere.pdf")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "No runs recorded") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})
}

func TestHistoryCmdEmptyJournal(t *testing.T) {
	t.Parallel()

	dbDir := filepath.Join(t.TempDir(), "db")
	stdout, _, err := execute(t, "history", "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No runs recorded yet") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	if _, err := database.Open(dbDir, database.Options{}); err == nil {
		t.Error("history must not create a journal")
	}
}

func TestHistoryCmdFlags(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()

	_, _, err := execute(t, "history", "--db-dir", dbDir, "--json", "--markdown")
	if !errors.Is(err, config.ErrConflictingReportFormats) {
		t.Errorf("error = %v, want ErrConflictingReportFormats", err)
	}

	_, _, err = execute(t, "history", "--db-dir", dbDir, "--exports")
	if err == nil {
		t.Error("--exports without a key should fail")
	}

	_, _, err = execute(t, "history", "--db-dir", dbDir, "--latest")
	if err == nil {
		t.Error("--latest without a key should fail")
	}
}

func TestHistoryKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", "%PDF-1.4 test")
	if got, want := historyKey(path), pdfdoc.Fingerprint([]byte("%PDF-1.4 test")); got != want {
		t.Errorf("historyKey(file) = %q, want fingerprint %q", got, want)
	}
	if got := historyKey("plan.pdf"); got != "plan.pdf" {
		t.Errorf("historyKey(name) = %q, want plan.pdf", got)
	}
}
