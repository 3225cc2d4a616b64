package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/nao1215/drawtopia/internal/pdfdoc"
)

// MaxPixels bounds the area of a rendered page.
const MaxPixels = 64 << 20

// PageRenderer rasterizes one page of a document at a scale where 1.0 maps
// one PDF point to one pixel.
type PageRenderer interface {
	RenderPage(ctx context.Context, doc *pdfdoc.Document, page int, scale float64) (image.Image, error)
}

// PageRendererFunc adapts a function to PageRenderer.
type PageRendererFunc func(ctx context.Context, doc *pdfdoc.Document, page int, scale float64) (image.Image, error)

// RenderPage calls f.
func (f PageRendererFunc) RenderPage(ctx context.Context, doc *pdfdoc.Document, page int, scale float64) (image.Image, error) {
	return f(ctx, doc, page, scale)
}

// SheetRenderer paints a blank page sheet with a thin border.
type SheetRenderer struct {
	// Paper is the sheet colour.
	Paper gg.RGBA

	// Border is the outline colour. A zero alpha disables the outline.
	Border gg.RGBA
}

// NewSheetRenderer returns a renderer painting white sheets with a light
// grey outline.
func NewSheetRenderer() *SheetRenderer {
	return &SheetRenderer{
		Paper:  gg.White,
		Border: gg.RGBA2(0.8, 0.8, 0.8, 1),
	}
}

// RenderPage implements PageRenderer.
func (r *SheetRenderer) RenderPage(ctx context.Context, doc *pdfdoc.Document, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := doc.Page(page)
	if err != nil {
		return nil, err
	}
	w, h, err := PixelSize(p, scale)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.ClearWithColor(r.Paper)
	if r.Border.A > 0 {
		dc.SetRGBA(r.Border.R, r.Border.G, r.Border.B, r.Border.A)
		dc.SetLineWidth(1)
		dc.DrawRectangle(0.5, 0.5, float64(w)-1, float64(h)-1)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("failed to draw page %d outline: %w", page, err)
		}
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// PixelSize returns the raster size of page at scale, at least 1x1.
func PixelSize(page pdfdoc.Page, scale float64) (width, height int, err error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	width = max(1, int(math.Ceil(page.Width()*scale)))
	height = max(1, int(math.Ceil(page.Height()*scale)))
	if width*height > MaxPixels {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, width, height)
	}
	return width, height, nil
}
