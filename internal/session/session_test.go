package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/drawtopia/internal/canvas"
	"github.com/nao1215/drawtopia/internal/config"
	"github.com/nao1215/drawtopia/internal/geometry"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/notify"
	"github.com/nao1215/drawtopia/internal/pdfdoc"
	"github.com/nao1215/drawtopia/internal/pdfdoc/pdfdoctest"
	"github.com/nao1215/drawtopia/internal/render"
)

func newSession(t *testing.T, opts ...Option) (*Session, *notify.Recorder) {
	t.Helper()
	rec := notify.NewRecorder()
	return New(append([]Option{WithNotifier(rec)}, opts...)...), rec
}

func loaded(t *testing.T, pages int, opts ...Option) (*Session, *notify.Recorder) {
	t.Helper()
	s, rec := newSession(t, opts...)
	data := pdfdoctest.New(pdfdoctest.Options{Pages: pages, Width: 200, Height: 100})
	if err := s.Load(context.Background(), "plan.pdf", pdfdoc.MIMEType, data); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	rec.Reset()
	return s, rec
}

func lastNotice(t *testing.T, rec *notify.Recorder) model.Notice {
	t.Helper()
	n, ok := rec.Last()
	if !ok {
		t.Fatal("no notice was emitted")
	}
	return n
}

func wantNotice(t *testing.T, rec *notify.Recorder, level model.NoticeLevel, message string) {
	t.Helper()
	n := lastNotice(t, rec)
	if n.Level != level || n.Message != message {
		t.Errorf("last notice = %s %q, want %s %q", n.Level, n.Message, level, message)
	}
}

func pts(xy ...float64) []geometry.Point {
	out := make([]geometry.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geometry.Pt(xy[i], xy[i+1]))
	}
	return out
}

func failingRenderer() render.PageRenderer {
	return render.PageRendererFunc(func(context.Context, *pdfdoc.Document, int, float64) (image.Image, error) {
		return nil, errors.New("renderer exploded")
	})
}

func TestSession_Load(t *testing.T) {
	t.Parallel()

	t.Run("starts on page one with no tool", func(t *testing.T) {
		t.Parallel()

		s, rec := newSession(t)
		data := pdfdoctest.New(pdfdoctest.Options{Pages: 3})
		if err := s.Load(context.Background(), "plan.pdf", "application/pdf", data); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		st := s.Snapshot()
		if !st.Loaded || st.Page != 1 || st.PageCount != 3 || st.Zoom != 1 || st.Tool != model.ToolNone {
			t.Errorf("Snapshot() = %+v, want loaded on page 1 of 3 at zoom 1 with no tool", st)
		}
		if st.Fingerprint != pdfdoc.Fingerprint(data) {
			t.Errorf("Fingerprint = %q, want %q", st.Fingerprint, pdfdoc.Fingerprint(data))
		}
		wantNotice(t, rec, model.NoticeSuccess, `PDF "plan.pdf" loaded successfully`)

		layer := s.Layer()
		if len(layer) != 2 || layer[0].Kind != canvas.KindBackground || layer[1].Kind != canvas.KindPageImage {
			t.Errorf("layer = %v, want background and page image", layer)
		}
	})

	t.Run("sniffs content when no media type is declared", func(t *testing.T) {
		t.Parallel()

		s, _ := newSession(t)
		if err := s.Load(context.Background(), "plan.pdf", "", pdfdoctest.New(pdfdoctest.Options{})); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !s.Snapshot().Loaded {
			t.Error("document was not loaded")
		}
	})

	t.Run("resets state of the previous document", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 3)
		ctx := context.Background()
		if err := s.SelectTool(model.ToolPen); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(1, 1, 5, 5)); err != nil {
			t.Fatal(err)
		}
		if err := s.Save(); err != nil {
			t.Fatal(err)
		}
		if err := s.NextPage(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.ZoomIn(ctx); err != nil {
			t.Fatal(err)
		}

		if err := s.Load(ctx, "other.pdf", pdfdoc.MIMEType, pdfdoctest.New(pdfdoctest.Options{Pages: 2})); err != nil {
			t.Fatal(err)
		}
		st := s.Snapshot()
		if st.Document != "other.pdf" || st.Page != 1 || st.Zoom != 1 || st.Tool != model.ToolNone || len(st.Annotations) != 0 {
			t.Errorf("Snapshot() after reload = %+v", st)
		}
	})
}

func TestSession_Load_RejectsNonPDF(t *testing.T) {
	t.Parallel()

	inputs := []struct {
		name string
		mime string
		data []byte
	}{
		{name: "photo.png", mime: "image/png", data: []byte("\x89PNG\r\n\x1a\n")},
		{name: "notes.txt", mime: "text/plain", data: []byte("hello")},
		{name: "mislabelled.pdf", mime: "text/plain", data: pdfdoctest.New(pdfdoctest.Options{})},
		{name: "unknown", mime: "", data: []byte("hello")},
	}

	for _, in := range inputs {
		t.Run("fresh session/"+in.name, func(t *testing.T) {
			t.Parallel()

			s, rec := newSession(t)
			before := s.Snapshot()
			err := s.Load(context.Background(), in.name, in.mime, in.data)
			if !errors.Is(err, ErrNotPDF) {
				t.Errorf("Load() error = %v, want ErrNotPDF", err)
			}
			wantNotice(t, rec, model.NoticeError, "Please upload a PDF file")
			if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
				t.Errorf("state changed (-before +after):\n%s", diff)
			}
		})

		t.Run("loaded session/"+in.name, func(t *testing.T) {
			t.Parallel()

			s, rec := loaded(t, 2)
			if err := s.SelectTool(model.ToolArea); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Draw(pts(0, 0, 10, 0, 10, 10)); err != nil {
				t.Fatal(err)
			}
			before := s.Snapshot()

			err := s.Load(context.Background(), in.name, in.mime, in.data)
			if !errors.Is(err, ErrNotPDF) {
				t.Errorf("Load() error = %v, want ErrNotPDF", err)
			}
			wantNotice(t, rec, model.NoticeError, "Please upload a PDF file")
			if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
				t.Errorf("state changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestSession_Load_Failures(t *testing.T) {
	t.Parallel()

	t.Run("broken PDF keeps state", func(t *testing.T) {
		t.Parallel()

		s, rec := loaded(t, 2)
		before := s.Snapshot()
		err := s.Load(context.Background(), "broken.pdf", pdfdoc.MIMEType, []byte("%PDF-1.7\nnot really\n"))
		if err == nil {
			t.Fatal("Load() error = nil, want parse error")
		}
		wantNotice(t, rec, model.NoticeError, "Failed to load PDF")
		if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
			t.Errorf("state changed (-before +after):\n%s", diff)
		}
	})

	t.Run("render failure is reported", func(t *testing.T) {
		t.Parallel()

		s, rec := newSession(t, WithRenderer(failingRenderer()))
		err := s.Load(context.Background(), "plan.pdf", pdfdoc.MIMEType, pdfdoctest.New(pdfdoctest.Options{}))
		if err == nil {
			t.Fatal("Load() error = nil, want render error")
		}
		wantNotice(t, rec, model.NoticeError, "Failed to render page 1")
	})
}

func TestSession_LoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "site.pdf")
	if err := os.WriteFile(pdfPath, pdfdoctest.New(pdfdoctest.Options{Pages: 2}), 0o600); err != nil {
		t.Fatal(err)
	}
	txtPath := filepath.Join(dir, "site.txt")
	if err := os.WriteFile(txtPath, []byte("plain text"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, rec := newSession(t)
	if err := s.LoadFile(context.Background(), pdfPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := s.Snapshot().Document; got != "site.pdf" {
		t.Errorf("Document = %q, want site.pdf", got)
	}

	if err := s.LoadFile(context.Background(), txtPath); !errors.Is(err, ErrNotPDF) {
		t.Errorf("LoadFile(txt) error = %v, want ErrNotPDF", err)
	}
	wantNotice(t, rec, model.NoticeError, "Please upload a PDF file")

	if err := s.LoadFile(context.Background(), filepath.Join(dir, "missing.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestSession_RequiresDocument(t *testing.T) {
	t.Parallel()

	s, rec := newSession(t)
	ctx := context.Background()

	ops := map[string]func() error{
		"SelectTool": func() error { return s.SelectTool(model.ToolPen) },
		"ZoomIn":     func() error { return s.ZoomIn(ctx) },
		"NextPage":   func() error { return s.NextPage(ctx) },
		"Clear":      s.Clear,
		"Save":       s.Save,
		"Draw":       func() error { _, err := s.Draw(pts(0, 0, 1, 1)); return err },
		"ExportPNG":  func() error { return s.ExportPNG(ctx, &bytes.Buffer{}) },
		"ExportPDF":  func() error { return s.ExportPDF(ctx, &bytes.Buffer{}) },
	}
	for name, op := range ops {
		rec.Reset()
		if err := op(); !errors.Is(err, ErrNoDocument) {
			t.Errorf("%s() error = %v, want ErrNoDocument", name, err)
		}
		if n, ok := rec.Last(); !ok || n.Level != model.NoticeError {
			t.Errorf("%s() emitted %v, want an error notice", name, n)
		}
	}
}

func TestSession_SelectTool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool          model.Tool
		wantNotice    string
		wantFreeDraw  bool
		wantSelection bool
		wantCursor    model.CursorStyle
		wantBrush     model.Brush
	}{
		{tool: model.ToolCursor, wantNotice: "Cursor tool selected", wantSelection: true, wantCursor: model.CursorDefault, wantBrush: model.ShapeBrush},
		{tool: model.ToolPan, wantNotice: "Pan tool selected", wantCursor: model.CursorGrab, wantBrush: model.ShapeBrush},
		{tool: model.ToolPen, wantNotice: "Pen tool selected", wantFreeDraw: true, wantCursor: model.CursorCrosshair, wantBrush: model.PenBrush},
		{tool: model.ToolMarker, wantNotice: "Marker tool selected", wantFreeDraw: true, wantCursor: model.CursorCrosshair, wantBrush: model.MarkerBrush},
		{tool: model.ToolAngle, wantNotice: "Angle tool selected", wantCursor: model.CursorDefault, wantBrush: model.ShapeBrush},
	}

	for _, tt := range tests {
		t.Run(tt.tool.String(), func(t *testing.T) {
			t.Parallel()

			s, rec := loaded(t, 1)
			if err := s.SelectTool(tt.tool); err != nil {
				t.Fatalf("SelectTool() error = %v", err)
			}
			wantNotice(t, rec, model.NoticeInfo, tt.wantNotice)

			st := s.Snapshot()
			if st.Tool != tt.tool || st.FreeDraw != tt.wantFreeDraw || st.Selection != tt.wantSelection ||
				st.Cursor != tt.wantCursor || st.Brush != tt.wantBrush {
				t.Errorf("Snapshot() = %+v", st)
			}
		})
	}

	t.Run("rejects unknown tools", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1)
		for _, tool := range []model.Tool{model.ToolNone, model.Tool(99)} {
			if err := s.SelectTool(tool); !errors.Is(err, model.ErrUnknownTool) {
				t.Errorf("SelectTool(%d) error = %v, want ErrUnknownTool", tool, err)
			}
		}
	})
}

func TestSession_SelectColor(t *testing.T) {
	t.Parallel()

	s, rec := newSession(t)
	if got := s.Snapshot().Color; got != model.DefaultColor {
		t.Errorf("initial Color = %q, want %q", got, model.DefaultColor)
	}

	if err := s.SelectColor("light blue"); err != nil {
		t.Fatalf("SelectColor() error = %v", err)
	}
	if got := s.Snapshot().Color; got != "#5AC8FA" {
		t.Errorf("Color = %q, want #5AC8FA", got)
	}

	if err := s.SelectColor("#abcdef"); err != nil {
		t.Fatalf("SelectColor(hex) error = %v", err)
	}
	if got := s.Snapshot().Color; got != "#ABCDEF" {
		t.Errorf("Color = %q, want #ABCDEF", got)
	}

	if err := s.SelectColor("chartreuse-ish"); !errors.Is(err, model.ErrInvalidColor) {
		t.Errorf("SelectColor(invalid) error = %v, want ErrInvalidColor", err)
	}
	wantNotice(t, rec, model.NoticeError, `Invalid color "chartreuse-ish"`)
	if got := s.Snapshot().Color; got != "#ABCDEF" {
		t.Errorf("Color after invalid input = %q, want unchanged", got)
	}
}

func TestSession_Zoom(t *testing.T) {
	t.Parallel()

	t.Run("clamps at the bounds", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1)
		ctx := context.Background()
		for range 20 {
			if err := s.ZoomIn(ctx); err != nil {
				t.Fatal(err)
			}
		}
		if got := s.Snapshot().Zoom; got != 3.0 {
			t.Errorf("Zoom after zooming in = %v, want 3", got)
		}
		for range 20 {
			if err := s.ZoomOut(ctx); err != nil {
				t.Fatal(err)
			}
		}
		if got := s.Snapshot().Zoom; got != 0.5 {
			t.Errorf("Zoom after zooming out = %v, want 0.5", got)
		}
	})

	t.Run("initial zoom is clamped before a document is loaded", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			initial float64
			want    float64
		}{
			{initial: 10, want: 3.0},
			{initial: 0.1, want: 0.5},
			{initial: 1.25, want: 1.25},
		}
		for _, tt := range tests {
			s, _ := newSession(t, WithInitialZoom(tt.initial))
			if got := s.Snapshot().Zoom; got != tt.want {
				t.Errorf("initial zoom %v: Snapshot().Zoom = %v, want %v", tt.initial, got, tt.want)
			}
		}
	})

	t.Run("steps by 0.2", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1)
		ctx := context.Background()
		for range 3 {
			if err := s.ZoomIn(ctx); err != nil {
				t.Fatal(err)
			}
		}
		if got := s.Snapshot().Zoom; got != 1.6 {
			t.Errorf("Zoom = %v, want 1.6", got)
		}
	})

	t.Run("re-renders the page at the new scale", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1)
		if err := s.SetZoom(context.Background(), 2); err != nil {
			t.Fatal(err)
		}
		img := s.Layer()[1].Image
		if got := img.Bounds().Size(); got != image.Pt(400, 200) {
			t.Errorf("page image size = %v, want (400,200)", got)
		}
	})

	t.Run("SetZoom clamps and validates", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1)
		ctx := context.Background()
		if err := s.SetZoom(ctx, 10); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Zoom; got != 3 {
			t.Errorf("Zoom = %v, want 3", got)
		}
		if err := s.SetZoom(ctx, 0); !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("SetZoom(0) error = %v, want ErrInvalidZoom", err)
		}
	})

	t.Run("annotations survive zoom", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1)
		ctx := context.Background()
		if err := s.SelectTool(model.ToolLength); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(10, 10, 40, 50)); err != nil {
			t.Fatal(err)
		}
		before := s.Snapshot().Annotations

		if err := s.ZoomIn(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.ZoomOut(ctx); err != nil {
			t.Fatal(err)
		}
		after := s.Snapshot()
		if diff := cmp.Diff(before, after.Annotations); diff != "" {
			t.Errorf("annotations changed across zoom (-before +after):\n%s", diff)
		}
		if after.Unsaved != 1 {
			t.Errorf("Unsaved = %d, want 1", after.Unsaved)
		}
	})

	t.Run("render failure keeps the previous zoom", func(t *testing.T) {
		t.Parallel()

		fail := false
		renderer := render.PageRendererFunc(func(ctx context.Context, doc *pdfdoc.Document, page int, scale float64) (image.Image, error) {
			if fail {
				return nil, errors.New("renderer exploded")
			}
			return render.NewSheetRenderer().RenderPage(ctx, doc, page, scale)
		})
		s, rec := loaded(t, 1, WithRenderer(renderer))
		fail = true

		if err := s.ZoomIn(context.Background()); err == nil {
			t.Fatal("ZoomIn() error = nil, want render error")
		}
		wantNotice(t, rec, model.NoticeError, "Failed to render page 1")
		if got := s.Snapshot().Zoom; got != 1 {
			t.Errorf("Zoom = %v, want 1", got)
		}
	})
}

func TestSession_Navigation(t *testing.T) {
	t.Parallel()

	t.Run("stays within the document", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 2)
		ctx := context.Background()

		if err := s.PrevPage(ctx); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Page; got != 1 {
			t.Errorf("Page after PrevPage on first page = %d, want 1", got)
		}
		if err := s.NextPage(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.NextPage(ctx); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Page; got != 2 {
			t.Errorf("Page after NextPage on last page = %d, want 2", got)
		}
		for _, n := range []int{0, 3, -5} {
			if err := s.GoToPage(ctx, n); err != nil {
				t.Fatal(err)
			}
			if got := s.Snapshot().Page; got != 2 {
				t.Errorf("GoToPage(%d) moved to page %d", n, got)
			}
		}
		if err := s.GoToPage(ctx, 1); err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Page; got != 1 {
			t.Errorf("Page = %d, want 1", got)
		}
	})

	t.Run("drops unsaved marks", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 2)
		ctx := context.Background()
		if err := s.SelectTool(model.ToolPen); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(1, 1, 20, 20)); err != nil {
			t.Fatal(err)
		}
		if err := s.NextPage(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.PrevPage(ctx); err != nil {
			t.Fatal(err)
		}

		st := s.Snapshot()
		if len(st.Annotations) != 0 || st.CanSave {
			t.Errorf("Snapshot() = %+v, want no marks after navigating away", st)
		}
	})

	t.Run("keeps saved marks", func(t *testing.T) {
		t.Parallel()

		s, rec := loaded(t, 2)
		ctx := context.Background()
		if err := s.SelectTool(model.ToolPen); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(1, 1, 20, 20)); err != nil {
			t.Fatal(err)
		}
		if !s.CanSave() {
			t.Error("CanSave() = false after drawing")
		}
		if err := s.Save(); err != nil {
			t.Fatal(err)
		}
		wantNotice(t, rec, model.NoticeSuccess, "Annotations saved successfully")
		if s.CanSave() {
			t.Error("CanSave() = true right after saving")
		}

		if err := s.NextPage(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(5, 5, 6, 6)); err != nil {
			t.Fatal(err)
		}
		if err := s.PrevPage(ctx); err != nil {
			t.Fatal(err)
		}

		st := s.Snapshot()
		if len(st.Annotations) != 1 || st.Annotations[0].Page != 1 {
			t.Errorf("Annotations = %+v, want the saved mark on page 1", st.Annotations)
		}
	})
}

func TestSession_Draw(t *testing.T) {
	t.Parallel()

	t.Run("stores page-space points and measures", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1, WithUnit(model.UnitPoint))
		if err := s.SetZoom(context.Background(), 2); err != nil {
			t.Fatal(err)
		}
		if err := s.SelectTool(model.ToolLength); err != nil {
			t.Fatal(err)
		}
		if err := s.SelectColor("red"); err != nil {
			t.Fatal(err)
		}

		got, err := s.Draw(pts(20, 40, 60, 40))
		if err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
		want := model.Annotation{
			ID: 1, Page: 1, Tool: model.ToolLength, Color: "#FF0000", Width: 2, Opacity: 1,
			Points:      pts(10, 20, 30, 20),
			Measurement: &model.Measurement{Kind: model.MeasureLength, Value: 20, Unit: "pt", Label: "20.00 pt"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Draw() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("marker uses the marker brush", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 1)
		if err := s.SelectTool(model.ToolMarker); err != nil {
			t.Fatal(err)
		}
		got, err := s.Draw(pts(0, 0, 10, 10, 20, 5))
		if err != nil {
			t.Fatal(err)
		}
		if got.Width != 12 || got.Opacity != 0.5 || got.Measurement != nil {
			t.Errorf("Draw() = %+v, want width 12, opacity 0.5 and no measurement", got)
		}
	})

	t.Run("counter numbers marks per page", func(t *testing.T) {
		t.Parallel()

		s, _ := loaded(t, 2)
		if err := s.SelectTool(model.ToolCounter); err != nil {
			t.Fatal(err)
		}
		var labels []string
		for i := range 3 {
			a, err := s.Draw(pts(float64(10*i), 10))
			if err != nil {
				t.Fatal(err)
			}
			labels = append(labels, a.Label())
			if i == 0 {
				if err := s.Save(); err != nil {
					t.Fatal(err)
				}
			}
		}
		if diff := cmp.Diff([]string{"1", "2", "3"}, labels); diff != "" {
			t.Errorf("labels mismatch (-want +got):\n%s", diff)
		}

		if err := s.NextPage(context.Background()); err != nil {
			t.Fatal(err)
		}
		a, err := s.Draw(pts(5, 5))
		if err != nil {
			t.Fatal(err)
		}
		if a.Label() != "1" {
			t.Errorf("first counter on page 2 = %q, want 1", a.Label())
		}
	})

	t.Run("validates tool and points", func(t *testing.T) {
		t.Parallel()

		s, rec := loaded(t, 1)

		if _, err := s.Draw(pts(0, 0, 1, 1)); !errors.Is(err, model.ErrToolNotDrawable) {
			t.Errorf("Draw() with no tool error = %v, want ErrToolNotDrawable", err)
		}
		if err := s.SelectTool(model.ToolPan); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(0, 0, 1, 1)); !errors.Is(err, model.ErrToolNotDrawable) {
			t.Errorf("Draw() with pan error = %v, want ErrToolNotDrawable", err)
		}
		if err := s.SelectTool(model.ToolArea); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(0, 0, 1, 1)); !errors.Is(err, model.ErrPointCount) {
			t.Errorf("Draw() area with 2 points error = %v, want ErrPointCount", err)
		}
		if n := lastNotice(t, rec); n.Level != model.NoticeError {
			t.Errorf("last notice = %+v, want an error", n)
		}
		if s.CanSave() {
			t.Error("failed draws must not leave marks")
		}
	})
}

func TestSession_Note(t *testing.T) {
	t.Parallel()

	s, _ := loaded(t, 1)
	a, err := s.Note(geometry.Pt(30, 30), "check this")
	if err != nil {
		t.Fatalf("Note() error = %v", err)
	}
	if a.Tool != model.ToolNote || a.Text != "check this" || a.Label() != "check this" {
		t.Errorf("Note() = %+v", a)
	}
	if got := s.Snapshot().Tool; got != model.ToolNone {
		t.Errorf("Note() changed the active tool to %s", got)
	}

	if _, err := s.Note(geometry.Pt(1, 1), "  "); !errors.Is(err, ErrEmptyNote) {
		t.Errorf("Note(empty) error = %v, want ErrEmptyNote", err)
	}
}

func TestSession_Clear(t *testing.T) {
	t.Parallel()

	s, rec := loaded(t, 2)
	if err := s.SelectTool(model.ToolPen); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Draw(pts(0, 0, 5, 5)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Draw(pts(5, 5, 9, 9)); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	wantNotice(t, rec, model.NoticeSuccess, "All annotations cleared")

	st := s.Snapshot()
	if len(st.Annotations) != 0 || st.CanSave {
		t.Errorf("Snapshot() = %+v, want no marks", st)
	}
	layer := s.Layer()
	if len(layer) != 2 || layer[0].Kind != canvas.KindBackground || layer[1].Kind != canvas.KindPageImage {
		t.Errorf("layer after Clear = %v, want the base objects only", layer)
	}
}

func TestSession_Save_Nothing(t *testing.T) {
	t.Parallel()

	s, rec := loaded(t, 1)
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	wantNotice(t, rec, model.NoticeInfo, "No new annotations to save")
}

func TestSession_ExportPNG(t *testing.T) {
	t.Parallel()

	t.Run("writes the page at the current zoom", func(t *testing.T) {
		t.Parallel()

		s, rec := loaded(t, 2)
		ctx := context.Background()
		if err := s.NextPage(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.SetZoom(ctx, 1.5); err != nil {
			t.Fatal(err)
		}
		if err := s.SelectTool(model.ToolArea); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(10, 10, 100, 10, 100, 100)); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := s.ExportPNG(ctx, &buf); err != nil {
			t.Fatalf("ExportPNG() error = %v", err)
		}
		wantNotice(t, rec, model.NoticeSuccess, "Canvas saved as image")

		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("png.Decode() error = %v", err)
		}
		if got := img.Bounds().Size(); got != image.Pt(300, 150) {
			t.Errorf("size = %v, want (300,150)", got)
		}
		if got := s.PNGFileName(); got != "annotated-page-2.png" {
			t.Errorf("PNGFileName() = %q, want annotated-page-2.png", got)
		}
	})

	t.Run("reports failures", func(t *testing.T) {
		t.Parallel()

		s, rec := newSession(t, WithRenderer(failingRenderer()))
		_ = s.Load(context.Background(), "plan.pdf", pdfdoc.MIMEType, pdfdoctest.New(pdfdoctest.Options{}))

		if err := s.ExportPNG(context.Background(), &bytes.Buffer{}); err == nil {
			t.Fatal("ExportPNG() error = nil, want render error")
		}
		wantNotice(t, rec, model.NoticeError, "Failed to save canvas")
	})
}

func TestSession_ExportPDF(t *testing.T) {
	t.Parallel()

	t.Run("embeds saved and current marks", func(t *testing.T) {
		t.Parallel()

		s, rec := loaded(t, 2)
		ctx := context.Background()
		if err := s.SelectTool(model.ToolPen); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Draw(pts(1, 1, 10, 10)); err != nil {
			t.Fatal(err)
		}
		if err := s.Save(); err != nil {
			t.Fatal(err)
		}
		if err := s.NextPage(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Note(geometry.Pt(20, 20), "todo"); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := s.ExportPDF(ctx, &buf); err != nil {
			t.Fatalf("ExportPDF() error = %v", err)
		}
		wantNotice(t, rec, model.NoticeSuccess, "PDF downloaded successfully")

		doc, err := pdfdoc.Read("out.pdf", buf.Bytes())
		if err != nil {
			t.Fatalf("exported PDF does not re-read: %v", err)
		}
		if doc.PageCount() != 2 {
			t.Errorf("PageCount() = %d, want 2", doc.PageCount())
		}
	})

	t.Run("reports cancellation", func(t *testing.T) {
		t.Parallel()

		s, rec := loaded(t, 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := s.ExportPDF(ctx, &bytes.Buffer{}); !errors.Is(err, context.Canceled) {
			t.Errorf("ExportPDF() error = %v, want context.Canceled", err)
		}
		wantNotice(t, rec, model.NoticeError, "Failed to download PDF")
	})
}

func TestSession_ConcurrentUse(t *testing.T) {
	t.Parallel()

	s, _ := loaded(t, 1)
	if err := s.SelectTool(model.ToolCounter); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Draw(pts(float64(i), float64(i))); err != nil {
				t.Errorf("Draw() error = %v", err)
			}
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	st := s.Snapshot()
	if len(st.Annotations) != 16 {
		t.Fatalf("len(Annotations) = %d, want 16", len(st.Annotations))
	}
	seen := make(map[string]bool)
	for _, a := range st.Annotations {
		seen[a.Label()] = true
	}
	if len(seen) != 16 {
		t.Errorf("counter labels are not unique: %v", seen)
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	unit := model.UnitMillimeter
	s := New(WithUnit(model.UnitPoint), WithZoomLimits(0.25, 8, 0.5))
	s2 := New(append(FromConfig(configFixture(unit)), WithNotifier(notify.Discard))...)

	if s.opts.zoomMax != 8 || s.opts.zoomStep != 0.5 {
		t.Errorf("WithZoomLimits not applied: %+v", s.opts)
	}
	if s2.opts.unit != unit || s2.opts.markerBrush.Width != 20 || s2.opts.password != "secret" {
		t.Errorf("FromConfig not applied: unit=%v marker=%v", s2.opts.unit, s2.opts.markerBrush)
	}
}

func configFixture(unit model.Unit) *config.Config {
	cfg := config.NewConfig()
	cfg.Unit = unit
	cfg.MarkerBrush = model.Brush{Width: 20, Opacity: 0.5}
	cfg.Password = "secret"
	return cfg
}
