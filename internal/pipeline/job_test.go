package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/notify"
	"github.com/nao1215/drawtopia/internal/session"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	t.Run("notices reach the report and the extra notifier", func(t *testing.T) {
		t.Parallel()

		extra := notify.NewRecorder()
		job := NewJob("plan.pdf", "out", extra)
		if err := job.Session.SelectTool(model.ToolPen); !errors.Is(err, session.ErrNoDocument) {
			t.Fatalf("SelectTool() error = %v, want ErrNoDocument", err)
		}

		r := job.Finish()
		if len(r.Notices) != 1 || len(extra.Notices()) != 1 {
			t.Errorf("report notices = %d, extra notices = %d, want 1 and 1", len(r.Notices), len(extra.Notices()))
		}
		if r.Document != "plan.pdf" || job.OutDir != "out" {
			t.Errorf("job = %q in %q", r.Document, job.OutDir)
		}
	})

	t.Run("concurrent jobs sharing options keep their own notifier", func(t *testing.T) {
		t.Parallel()

		// Spare capacity lets a careless append write into the shared array.
		shared := make([]session.Option, 0, 16)
		shared = append(shared, session.WithInitialZoom(1))

		const workers = 16
		extras := make([]*notify.Recorder, workers)
		jobs := make([]*Job, workers)

		var wg sync.WaitGroup
		for i := range workers {
			extras[i] = notify.NewRecorder()
			wg.Add(1)
			go func() {
				defer wg.Done()
				jobs[i] = NewJob(fmt.Sprintf("doc-%d.pdf", i), "", extras[i], shared...)
				_ = jobs[i].Session.SelectTool(model.ToolPen)
			}()
		}
		wg.Wait()

		for i, job := range jobs {
			if got := len(extras[i].Notices()); got != 1 {
				t.Errorf("job %d: extra notifier got %d notices, want 1", i, got)
			}
			if got := len(job.Finish().Notices); got != 1 {
				t.Errorf("job %d: report has %d notices, want 1", i, got)
			}
		}
		if len(shared) != 1 {
			t.Errorf("shared options were modified: len = %d", len(shared))
		}
	})
}
