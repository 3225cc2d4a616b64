package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/drawtopia/internal/script"
)

// LoadStep loads the job's document into its session.
type LoadStep struct{}

// Name returns the step name.
func (LoadStep) Name() string {
	return "load"
}

// Do loads job.Document.
func (LoadStep) Do(ctx context.Context, job *Job) error {
	return job.Session.LoadFile(ctx, job.Document)
}

// Required reports that nothing can run without a loaded document.
func (LoadStep) Required() bool {
	return true
}

// ActionStep performs one script action on the job's session.
type ActionStep struct {
	Action script.Action
}

// Name returns the action description, e.g. "zoom in".
func (s ActionStep) Name() string {
	return s.Action.String()
}

// Do dispatches the action to the session.
func (s ActionStep) Do(ctx context.Context, job *Job) error {
	a := s.Action
	sess := job.Session

	switch a.Kind {
	case script.KindTool:
		return sess.SelectTool(a.Tool)
	case script.KindColor:
		return sess.SelectColor(a.Color)
	case script.KindDraw:
		_, err := sess.Draw(a.Points)
		return err
	case script.KindNote:
		_, err := sess.Note(a.Points[0], a.Text)
		return err
	case script.KindZoom:
		switch a.Step {
		case 1:
			return sess.ZoomIn(ctx)
		case -1:
			return sess.ZoomOut(ctx)
		default:
			return sess.SetZoom(ctx, a.Value)
		}
	case script.KindPage:
		switch a.Step {
		case 1:
			return sess.NextPage(ctx)
		case -1:
			return sess.PrevPage(ctx)
		default:
			return sess.GoToPage(ctx, int(a.Value))
		}
	case script.KindClear:
		return sess.Clear()
	case script.KindSave:
		return sess.Save()
	case script.KindExportPNG:
		name := sess.PNGFileName()
		if a.Path != "" {
			name = script.ExpandPath(a.Path, job.Document, sess.Snapshot().Page)
		}
		return exportFile(job, name, func(w io.Writer) error {
			return sess.ExportPNG(ctx, w)
		})
	case script.KindExportPDF:
		name := script.DefaultPDFName(job.Document)
		if a.Path != "" {
			name = script.ExpandPath(a.Path, job.Document, sess.Snapshot().Page)
		}
		return exportFile(job, name, func(w io.Writer) error {
			return sess.ExportPDF(ctx, w)
		})
	default:
		return fmt.Errorf("%w: %q", script.ErrUnknownAction, a.Kind)
	}
}

// exportFile writes an export below job.OutDir and records it in the
// report. A failed export leaves no partial file behind.
func exportFile(job *Job, name string, write func(io.Writer) error) error {
	path := name
	if !filepath.IsAbs(path) && job.OutDir != "" {
		path = filepath.Join(job.OutDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // path comes from the user's script
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	job.Report.Exports = append(job.Report.Exports, path)
	return nil
}

// ScriptSteps returns the steps that load the job's document and then run
// every action of s.
func ScriptSteps(s *script.Script) []Step {
	steps := make([]Step, 0, len(s.Steps)+1)
	steps = append(steps, LoadStep{})
	for _, a := range s.Steps {
		steps = append(steps, ActionStep{Action: a})
	}
	return steps
}

// ScriptPipeline builds a pipeline running s. Scripts continue past
// failing steps unless stopOnError is set.
func ScriptPipeline(s *script.Script, stopOnError bool, opts ...Option) *Pipeline {
	p := New(append([]Option{WithContinueOnError(!stopOnError)}, opts...)...)
	p.AddSteps(ScriptSteps(s)...)
	return p
}

var (
	_ Step = LoadStep{}
	_ Step = ActionStep{}
)
