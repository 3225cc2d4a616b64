// Package canvas holds the annotation layer that sits over a rendered page.
//
// A Layer keeps an ordered list of objects. Base objects (the background
// sheet and the page image) always come first and are never removed by
// Clear; user marks follow in the order they were drawn. The layer also
// carries the interaction state set by the active tool: free-draw mode,
// selection mode, cursor style, brush and colour.
package canvas

import (
	"image"
	"slices"

	"github.com/nao1215/drawtopia/internal/model"
)

// Kind identifies a layer object.
type Kind int

const (
	// KindBackground is the blank sheet behind the page image.
	KindBackground Kind = iota

	// KindPageImage is the rendered page.
	KindPageImage

	// KindMark is a user annotation.
	KindMark
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindPageImage:
		return "page-image"
	case KindMark:
		return "mark"
	default:
		return "unknown"
	}
}

// Object is one entry on the layer.
type Object struct {
	Kind Kind

	// Image is set for KindPageImage.
	Image image.Image

	// Annotation is set for KindMark.
	Annotation model.Annotation
}

// Layer is the annotation layer of one page. It is not safe for concurrent
// use; the session serialises access.
type Layer struct {
	objects []Object
	size    image.Point

	freeDraw  bool
	selection bool
	cursor    model.CursorStyle
	brush     model.Brush
	color     model.Color
}

// New returns an empty layer with no base objects.
func New() *Layer {
	return &Layer{
		cursor: model.CursorDefault,
		brush:  model.ShapeBrush,
		color:  model.DefaultColor,
	}
}

// SetPage replaces the base objects with a background and page image sized
// to img and drops every mark.
func (l *Layer) SetPage(img image.Image) {
	l.objects = l.objects[:0]
	l.setBase(img)
}

// SetPageImage swaps the page image, for example after a zoom change,
// keeping marks.
func (l *Layer) SetPageImage(img image.Image) {
	marks := l.marks()
	l.objects = nil
	l.setBase(img)
	l.objects = append(l.objects, marks...)
}

func (l *Layer) setBase(img image.Image) {
	if img == nil {
		l.size = image.Point{}
		return
	}
	l.size = img.Bounds().Size()
	l.objects = append(l.objects,
		Object{Kind: KindBackground},
		Object{Kind: KindPageImage, Image: img},
	)
}

// Configure applies a tool's interaction state.
func (l *Layer) Configure(tool model.Tool, brush model.Brush, color model.Color) {
	l.freeDraw = tool.FreeDraw()
	l.selection = tool.Selection()
	l.cursor = tool.Cursor()
	l.brush = brush
	l.color = color
}

// SetColor changes the colour used for new marks.
func (l *Layer) SetColor(color model.Color) {
	l.color = color
}

// Add appends a mark.
func (l *Layer) Add(a model.Annotation) {
	l.objects = append(l.objects, Object{Kind: KindMark, Annotation: a})
}

// Clear removes every mark, keeping base objects, and returns how many
// marks were removed.
func (l *Layer) Clear() int {
	n := len(l.objects)
	l.objects = slices.DeleteFunc(l.objects, func(o Object) bool {
		return o.Kind == KindMark
	})
	return n - len(l.objects)
}

// Marks returns copies of the annotations on the layer in drawing order.
func (l *Layer) Marks() []model.Annotation {
	var out []model.Annotation
	for _, o := range l.objects {
		if o.Kind == KindMark {
			out = append(out, o.Annotation)
		}
	}
	return out
}

func (l *Layer) marks() []Object {
	var out []Object
	for _, o := range l.objects {
		if o.Kind == KindMark {
			out = append(out, o)
		}
	}
	return out
}

// Objects returns a copy of every object, base objects first.
func (l *Layer) Objects() []Object {
	return slices.Clone(l.objects)
}

// PageImage returns the current page image, or nil before SetPage.
func (l *Layer) PageImage() image.Image {
	for _, o := range l.objects {
		if o.Kind == KindPageImage {
			return o.Image
		}
	}
	return nil
}

// Len returns the number of objects including base objects.
func (l *Layer) Len() int { return len(l.objects) }

// MarkCount returns the number of marks.
func (l *Layer) MarkCount() int { return len(l.objects) - l.BaseCount() }

// BaseCount returns the number of base objects.
func (l *Layer) BaseCount() int {
	n := 0
	for _, o := range l.objects {
		if o.Kind != KindMark {
			n++
		}
	}
	return n
}

// Size returns the layer size in pixels.
func (l *Layer) Size() image.Point { return l.size }

// FreeDraw reports whether free-hand drawing is on.
func (l *Layer) FreeDraw() bool { return l.freeDraw }

// Selection reports whether object selection is on.
func (l *Layer) Selection() bool { return l.selection }

// Cursor returns the pointer style.
func (l *Layer) Cursor() model.CursorStyle { return l.cursor }

// Brush returns the brush for new marks.
func (l *Layer) Brush() model.Brush { return l.brush }

// Color returns the colour for new marks.
func (l *Layer) Color() model.Color { return l.color }
