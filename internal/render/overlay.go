package render

import (
	"fmt"
	"image"
	"io"
	"strconv"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/nao1215/drawtopia/internal/geometry"
	"github.com/nao1215/drawtopia/internal/model"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is the label size in points at scale 1.
const DefaultFontSize = 10.0

const (
	// counterRadius is the radius of a counter dot in points.
	counterRadius = 8

	// noteSize is the edge length of a note marker in points.
	noteSize = 14

	// areaFillAlpha scales the brush opacity for polygon fills.
	areaFillAlpha = 0.15
)

// Overlay draws annotations over a page image. It owns a font source and
// must be closed.
type Overlay struct {
	source   *text.FontSource
	fontSize float64
}

// NewOverlay loads the Go regular font for labels at fontSize points.
// A non-positive size selects DefaultFontSize.
func NewOverlay(fontSize float64) (*Overlay, error) {
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &Overlay{source: source, fontSize: fontSize}, nil
}

// Close releases the font source.
func (o *Overlay) Close() error {
	return o.source.Close()
}

// Compose draws annotations onto a copy of page. Annotation points are in
// page space and are multiplied by scale.
func (o *Overlay) Compose(page image.Image, annotations []model.Annotation, scale float64) (image.Image, error) {
	dc, err := o.compose(page, annotations, scale)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// EncodePNG composes annotations over page and writes the PNG to w.
func (o *Overlay) EncodePNG(w io.Writer, page image.Image, annotations []model.Annotation, scale float64) error {
	dc, err := o.compose(page, annotations, scale)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

func (o *Overlay) compose(page image.Image, annotations []model.Annotation, scale float64) (*gg.Context, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}

	dc := gg.NewContextForImage(page)
	if err := o.Draw(dc, annotations, scale); err != nil {
		_ = dc.Close()
		return nil, err
	}
	if err := dc.FlushGPU(); err != nil {
		_ = dc.Close()
		return nil, err
	}
	return dc, nil
}

// Draw paints annotations in order on dc.
func (o *Overlay) Draw(dc *gg.Context, annotations []model.Annotation, scale float64) error {
	dc.SetFont(o.source.Face(o.fontSize * scale))
	for i := range annotations {
		if err := o.drawAnnotation(dc, &annotations[i], scale); err != nil {
			return fmt.Errorf("failed to draw annotation %d: %w", annotations[i].ID, err)
		}
	}
	return nil
}

func (o *Overlay) drawAnnotation(dc *gg.Context, a *model.Annotation, scale float64) error {
	if len(a.Points) == 0 {
		return nil
	}
	pts := geometry.Scale(a.Points, scale)
	r, g, b := a.Color.RGB()

	dc.Push()
	defer dc.Pop()

	dc.SetRGBA(r, g, b, a.Opacity)
	dc.SetLineWidth(a.Width * scale)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	switch a.Tool {
	case model.ToolPen, model.ToolMarker, model.ToolLength, model.ToolAngle:
		tracePath(dc, pts, false)
		if err := dc.Stroke(); err != nil {
			return err
		}
	case model.ToolArea:
		tracePath(dc, pts, true)
		dc.SetRGBA(r, g, b, a.Opacity*areaFillAlpha)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetRGBA(r, g, b, a.Opacity)
		if err := dc.Stroke(); err != nil {
			return err
		}
	case model.ToolPerimeter:
		tracePath(dc, pts, true)
		if err := dc.Stroke(); err != nil {
			return err
		}
	case model.ToolCounter:
		dc.DrawCircle(pts[0].X, pts[0].Y, counterRadius*scale)
		if err := dc.Fill(); err != nil {
			return err
		}
	case model.ToolNote:
		dc.DrawRectangle(pts[0].X, pts[0].Y, noteSize*scale, noteSize*scale)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	o.drawLabel(dc, a, pts, scale)
	return nil
}

// drawLabel writes the measurement label or note text next to the mark.
func (o *Overlay) drawLabel(dc *gg.Context, a *model.Annotation, pts []geometry.Point, scale float64) {
	label := a.Label()
	if label == "" {
		return
	}
	r, g, b := a.Color.RGB()
	dc.SetRGB(r, g, b)

	switch a.Tool {
	case model.ToolArea, model.ToolPerimeter:
		c := geometry.Centroid(pts)
		dc.DrawStringAnchored(label, c.X, c.Y, 0.5, 0.5)
	case model.ToolLength:
		mid := pts[0].Add(pts[1]).Mul(0.5)
		dc.DrawStringAnchored(label, mid.X, mid.Y-(a.Width+2)*scale, 0.5, 0)
	case model.ToolAngle:
		v := pts[1]
		dc.DrawStringAnchored(label, v.X+4*scale, v.Y-4*scale, 0, 0)
	case model.ToolCounter:
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(label, pts[0].X, pts[0].Y, 0.5, 0.5)
	case model.ToolNote:
		dc.DrawStringAnchored(label, pts[0].X+(noteSize+4)*scale, pts[0].Y+noteSize*scale/2, 0, 0.5)
	}
}

// tracePath appends a subpath through pts to the current path.
func tracePath(dc *gg.Context, pts []geometry.Point, closed bool) {
	for i, p := range pts {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
	if closed {
		dc.ClosePath()
	}
}

// FileName returns the default PNG export name for a 1-based page.
func FileName(page int) string {
	return "annotated-page-" + strconv.Itoa(page) + ".png"
}
