package session

import (
	"github.com/nao1215/drawtopia/internal/canvas"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/pdfdoc"
)

// State is a read-only view of a session.
type State struct {
	// Loaded is false until a document has been loaded.
	Loaded bool

	Document    string
	Fingerprint string
	PageCount   int
	Info        pdfdoc.Info

	// Page is the 1-based current page.
	Page int
	Zoom float64

	Tool      model.Tool
	Color     model.Color
	Cursor    model.CursorStyle
	FreeDraw  bool
	Selection bool
	Brush     model.Brush

	// CanSave is true when the current page has unsaved marks.
	CanSave bool

	// Annotations holds every saved mark plus the unsaved marks of the
	// current page, ordered by page then ID.
	Annotations []model.Annotation

	// Unsaved is the number of marks not yet saved.
	Unsaved int
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Zoom:        s.zoom,
		Tool:        s.tool,
		Color:       s.color,
		Cursor:      s.layer.Cursor(),
		FreeDraw:    s.layer.FreeDraw(),
		Selection:   s.layer.Selection(),
		Brush:       s.layer.Brush(),
		CanSave:     s.layer.MarkCount() > 0,
		Unsaved:     s.layer.MarkCount(),
		Annotations: s.annotations(),
	}
	if s.doc != nil {
		st.Loaded = true
		st.Document = s.doc.Name
		st.Fingerprint = s.doc.Fingerprint
		st.PageCount = s.doc.PageCount()
		st.Info = s.doc.Info
		st.Page = s.page
	}
	return st
}

// Document returns the loaded document, or nil.
func (s *Session) Document() *pdfdoc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Layer returns a copy of the objects on the annotation layer, base
// objects first.
func (s *Session) Layer() []canvas.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.Objects()
}
