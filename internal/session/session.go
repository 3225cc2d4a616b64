package session

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/nao1215/drawtopia/internal/canvas"
	"github.com/nao1215/drawtopia/internal/geometry"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/notify"
	"github.com/nao1215/drawtopia/internal/pdfdoc"
	"github.com/nao1215/drawtopia/internal/render"
)

// Session is a single-user document session. It is safe for concurrent
// use; operations are serialised.
type Session struct {
	mu   sync.Mutex
	opts options

	doc   *pdfdoc.Document
	page  int
	zoom  float64
	tool  model.Tool
	color model.Color
	layer *canvas.Layer

	// saved holds committed annotations per page.
	saved  map[int][]model.Annotation
	nextID int
}

// New creates a session with no document loaded.
func New(opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		opts:  o,
		color: o.defaultColor,
		layer: canvas.New(),
		saved: make(map[int][]model.Annotation),
	}
	s.zoom = s.clampZoom(o.initialZoom)
	s.layer.SetColor(s.color)
	return s
}

// Load replaces the current document with data. mimeType is the declared
// media type; when empty the content is sniffed. Non-PDF input is rejected
// without touching session state.
func (s *Session) Load(ctx context.Context, name, mimeType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !acceptsPDF(mimeType, data) {
		s.opts.logger.Debug("rejected upload", "name", name, "mime", mimeType)
		notify.Error(s.opts.notifier, msgNotPDF)
		return fmt.Errorf("%w: %s", ErrNotPDF, name)
	}

	doc, err := pdfdoc.Read(name, data, pdfdoc.WithPassword(s.opts.password))
	if err != nil {
		s.opts.logger.Warn("failed to load PDF", "name", name, "error", err)
		notify.Error(s.opts.notifier, msgLoadFailed)
		return err
	}

	s.doc = doc
	s.page = 1
	s.zoom = s.clampZoom(s.opts.initialZoom)
	s.tool = model.ToolNone
	s.layer = canvas.New()
	s.layer.Configure(model.ToolNone, s.opts.brush(model.ToolNone), s.color)
	s.saved = make(map[int][]model.Annotation)
	s.nextID = 0

	s.opts.logger.Debug("document loaded",
		"name", name,
		"pages", doc.PageCount(),
		"fingerprint", doc.Fingerprint,
	)
	notify.Success(s.opts.notifier, fmt.Sprintf(msgLoaded, name))

	img, err := s.render(ctx, s.page, s.zoom)
	if err != nil {
		return err
	}
	s.layer.SetPage(img)
	return nil
}

// LoadFile reads path and loads it with the sniffed media type.
func (s *Session) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-selected document
	if err != nil {
		notify.Error(s.opts.notifier, msgLoadFailed)
		return err
	}
	return s.Load(ctx, filepath.Base(path), pdfdoc.DetectMIME(data), data)
}

// acceptsPDF applies the declared media type when present, the sniffed
// one otherwise.
func acceptsPDF(mimeType string, data []byte) bool {
	if strings.TrimSpace(mimeType) != "" {
		return pdfdoc.IsPDFMIME(mimeType)
	}
	return pdfdoc.IsPDFMIME(pdfdoc.DetectMIME(data))
}

// SelectTool makes tool the active tool and reconfigures the layer.
func (s *Session) SelectTool(tool model.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDocument(); err != nil {
		return err
	}
	if !slices.Contains(model.Tools(), tool) {
		notify.Error(s.opts.notifier, msgUnknownTool)
		return fmt.Errorf("%w: %d", model.ErrUnknownTool, tool)
	}

	s.tool = tool
	s.layer.Configure(tool, s.opts.brush(tool), s.color)
	s.opts.logger.Debug("tool selected", "tool", tool, "cursor", tool.Cursor())
	notify.Info(s.opts.notifier, fmt.Sprintf(msgToolSelected, tool.Title()))
	return nil
}

// SelectColor sets the colour for new marks. name is a palette name or a
// #RRGGBB literal.
func (s *Session) SelectColor(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := model.ParseColor(name, s.opts.palette)
	if err != nil {
		notify.Error(s.opts.notifier, fmt.Sprintf(msgInvalidColor, name))
		return err
	}
	s.color = c
	s.layer.SetColor(c)
	return nil
}

// ZoomIn increases the zoom by one step.
func (s *Session) ZoomIn(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setZoom(ctx, s.zoom+s.opts.zoomStep)
}

// ZoomOut decreases the zoom by one step.
func (s *Session) ZoomOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setZoom(ctx, s.zoom-s.opts.zoomStep)
}

// SetZoom sets the zoom, clamped to the configured bounds.
func (s *Session) SetZoom(ctx context.Context, zoom float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}
	return s.setZoom(ctx, zoom)
}

func (s *Session) setZoom(ctx context.Context, zoom float64) error {
	if err := s.requireDocument(); err != nil {
		return err
	}

	zoom = s.clampZoom(zoom)
	if zoom == s.zoom {
		return nil
	}

	img, err := s.render(ctx, s.page, zoom)
	if err != nil {
		return err
	}
	s.zoom = zoom
	s.layer.SetPageImage(img)
	s.opts.logger.Debug("zoom changed", "zoom", zoom)
	return nil
}

// clampZoom bounds zoom and rounds away floating point drift from
// repeated steps.
func (s *Session) clampZoom(zoom float64) float64 {
	zoom = math.Round(zoom*1000) / 1000
	return math.Min(s.opts.zoomMax, math.Max(s.opts.zoomMin, zoom))
}

// NextPage moves to the following page. On the last page it does nothing.
func (s *Session) NextPage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToPage(ctx, s.page+1)
}

// PrevPage moves to the previous page. On the first page it does nothing.
func (s *Session) PrevPage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToPage(ctx, s.page-1)
}

// GoToPage moves to the 1-based page n. Pages outside the document are
// ignored. Unsaved marks are dropped.
func (s *Session) GoToPage(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goToPage(ctx, n)
}

func (s *Session) goToPage(ctx context.Context, n int) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	if n < 1 || n > s.doc.PageCount() {
		s.opts.logger.Debug("page change ignored", "page", n, "pages", s.doc.PageCount())
		return nil
	}
	if n == s.page {
		return nil
	}

	img, err := s.render(ctx, n, s.zoom)
	if err != nil {
		return err
	}
	if dropped := s.layer.MarkCount(); dropped > 0 {
		s.opts.logger.Debug("unsaved marks dropped", "page", s.page, "count", dropped)
	}
	s.page = n
	s.layer.SetPage(img)
	s.opts.logger.Debug("page changed", "page", n)
	return nil
}

// render rasterizes a page, reporting failures as notices.
func (s *Session) render(ctx context.Context, page int, zoom float64) (image.Image, error) {
	img, err := s.opts.renderer.RenderPage(ctx, s.doc, page, zoom)
	if err != nil {
		s.opts.logger.Warn("failed to render page", "page", page, "zoom", zoom, "error", err)
		notify.Error(s.opts.notifier, fmt.Sprintf(msgRenderFailed, page))
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}

// Clear removes every mark on the current page, saved or not. The page
// image stays.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDocument(); err != nil {
		return err
	}

	removed := s.layer.Clear() + len(s.saved[s.page])
	delete(s.saved, s.page)
	s.opts.logger.Debug("annotations cleared", "page", s.page, "count", removed)
	notify.Success(s.opts.notifier, msgCleared)
	return nil
}

// Draw adds a mark made with the active tool. points are canvas pixels at
// the current zoom. The stored annotation is returned.
func (s *Session) Draw(points []geometry.Point) (model.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDocument(); err != nil {
		return model.Annotation{}, err
	}
	return s.draw(s.tool, points, "")
}

// Note places a note at a canvas point regardless of the active tool.
func (s *Session) Note(point geometry.Point, text string) (model.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDocument(); err != nil {
		return model.Annotation{}, err
	}
	if strings.TrimSpace(text) == "" {
		notify.Error(s.opts.notifier, msgEmptyNote)
		return model.Annotation{}, ErrEmptyNote
	}
	return s.draw(model.ToolNote, []geometry.Point{point}, text)
}

func (s *Session) draw(tool model.Tool, points []geometry.Point, text string) (model.Annotation, error) {
	if err := tool.CheckPoints(len(points)); err != nil {
		notify.Error(s.opts.notifier, fmt.Sprintf(msgDrawFailed, tool, err))
		return model.Annotation{}, err
	}

	pagePoints := geometry.Scale(points, 1/s.zoom)
	brush := s.opts.brush(tool)
	s.nextID++

	a := model.Annotation{
		ID:      s.nextID,
		Page:    s.page,
		Tool:    tool,
		Color:   s.color,
		Width:   brush.Width,
		Opacity: brush.Opacity,
		Points:  pagePoints,
		Text:    text,
	}
	if tool.Measures() {
		a.Measurement = model.Measure(tool, pagePoints, s.opts.unit, s.countersOnPage()+1)
	}

	s.layer.Add(a)
	s.opts.logger.Debug("annotation added", "id", a.ID, "tool", tool, "page", s.page, "label", a.Label())
	return a, nil
}

// countersOnPage counts counter marks on the current page, saved or not.
func (s *Session) countersOnPage() int {
	n := 0
	for _, a := range s.pageAnnotations() {
		if a.Tool == model.ToolCounter {
			n++
		}
	}
	return n
}

// pageAnnotations returns the saved then unsaved marks of the current page.
func (s *Session) pageAnnotations() []model.Annotation {
	out := slices.Clone(s.saved[s.page])
	return append(out, s.layer.Marks()...)
}

// Save commits the unsaved marks of the current page.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDocument(); err != nil {
		return err
	}

	marks := s.layer.Marks()
	if len(marks) == 0 {
		notify.Info(s.opts.notifier, msgNothingToSave)
		return nil
	}
	s.saved[s.page] = append(s.saved[s.page], marks...)
	s.layer.Clear()

	s.opts.logger.Debug("annotations saved", "page", s.page, "count", len(marks))
	notify.Success(s.opts.notifier, msgSaved)
	return nil
}

// CanSave reports whether the current page has unsaved marks.
func (s *Session) CanSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.MarkCount() > 0
}

// PNGFileName returns the default file name for ExportPNG.
func (s *Session) PNGFileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.FileName(s.page)
}

// ExportPNG writes the current page at the current zoom with its marks.
func (s *Session) ExportPNG(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDocument(); err != nil {
		return err
	}
	if err := s.exportPNG(ctx, w); err != nil {
		s.opts.logger.Warn("failed to export PNG", "page", s.page, "error", err)
		notify.Error(s.opts.notifier, msgPNGFailed)
		return err
	}
	notify.Success(s.opts.notifier, msgPNGSaved)
	return nil
}

func (s *Session) exportPNG(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page := s.layer.PageImage()
	if page == nil {
		img, err := s.opts.renderer.RenderPage(ctx, s.doc, s.page, s.zoom)
		if err != nil {
			return err
		}
		s.layer.SetPageImage(img)
		page = img
	}

	overlay, err := render.NewOverlay(s.opts.fontSize)
	if err != nil {
		return err
	}
	defer overlay.Close()

	return overlay.EncodePNG(w, page, s.pageAnnotations(), s.zoom)
}

// ExportPDF writes the document with every saved and unsaved mark
// embedded as PDF annotations.
func (s *Session) ExportPDF(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDocument(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		notify.Error(s.opts.notifier, msgPDFFailed)
		return err
	}

	if err := s.doc.Export(w, s.annotations()); err != nil {
		s.opts.logger.Warn("failed to export PDF", "name", s.doc.Name, "error", err)
		notify.Error(s.opts.notifier, msgPDFFailed)
		return err
	}
	notify.Success(s.opts.notifier, msgPDFSaved)
	return nil
}

// annotations returns every saved mark plus the unsaved marks of the
// current page, ordered by page then ID.
func (s *Session) annotations() []model.Annotation {
	var out []model.Annotation
	for _, marks := range s.saved {
		out = append(out, marks...)
	}
	out = append(out, s.layer.Marks()...)
	model.SortAnnotations(out)
	return out
}

// requireDocument fails with ErrNoDocument before the first successful Load.
func (s *Session) requireDocument() error {
	if s.doc == nil {
		notify.Error(s.opts.notifier, msgNoDocument)
		return ErrNoDocument
	}
	return nil
}
