package pipeline

import (
	"slices"

	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/notify"
	"github.com/nao1215/drawtopia/internal/session"
)

// Job is the state one pipeline run works on.
type Job struct {
	// Document is the path of the PDF being annotated.
	Document string

	// OutDir is the base directory for relative export paths.
	OutDir string

	Session *session.Session
	Report  *model.MarkupReport

	notices *notify.Recorder
}

// NewJob creates a job for document with a fresh session. Notices are
// recorded for the report and also forwarded to extra, when set. opts is
// shared between concurrent jobs and is never written to.
func NewJob(document, outDir string, extra notify.Notifier, opts ...session.Option) *Job {
	rec := notify.NewRecorder()
	var n notify.Notifier = rec
	if extra != nil {
		n = notify.Multi{rec, extra}
	}

	return &Job{
		Document: document,
		OutDir:   outDir,
		Session:  session.New(append(slices.Clip(opts), session.WithNotifier(n))...),
		Report:   model.NewMarkupReport(document),
		notices:  rec,
	}
}

// Finish copies the final session state and the recorded notices into the
// report and returns it.
func (j *Job) Finish() *model.MarkupReport {
	st := j.Session.Snapshot()
	r := j.Report

	if st.Loaded {
		r.Document = st.Document
		r.Fingerprint = st.Fingerprint
		r.PageCount = st.PageCount
		r.Title = st.Info.Title
		r.Author = st.Info.Author
		r.CurrentPage = st.Page
	}
	r.Zoom = st.Zoom
	r.Annotations = st.Annotations
	r.Notices = j.notices.Notices()
	return r
}
