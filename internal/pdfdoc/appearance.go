package pdfdoc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/drawtopia/internal/geometry"
	"github.com/nao1215/drawtopia/internal/model"
	"golang.org/x/text/encoding/charmap"
)

// labelFontSize is the size of measurement labels in appearance streams.
const labelFontSize = 9

// counterRadius is the radius of a counter dot in points.
const counterRadius = 6

// noteSize is the edge length of a note icon in points.
const noteSize = 18

// contentStream accumulates PDF content stream operators.
type contentStream struct {
	buf bytes.Buffer
}

// op appends an operator line. Float operands are written compactly.
func (c *contentStream) op(operator string, operands ...float64) {
	for _, v := range operands {
		c.buf.WriteString(num(v))
		c.buf.WriteByte(' ')
	}
	c.buf.WriteString(operator)
	c.buf.WriteByte('\n')
}

func (c *contentStream) raw(s string) {
	c.buf.WriteString(s)
	c.buf.WriteByte('\n')
}

// path appends a subpath through pts; closed paths end with h.
func (c *contentStream) path(pts []geometry.Point, closed bool) {
	for i, p := range pts {
		if i == 0 {
			c.op("m", p.X, p.Y)
			continue
		}
		c.op("l", p.X, p.Y)
	}
	if closed {
		c.op("h")
	}
}

// circle appends a closed circle approximated by four Bézier curves.
func (c *contentStream) circle(center geometry.Point, r float64) {
	const k = 0.5523
	x, y := center.X, center.Y
	c.op("m", x+r, y)
	c.op("c", x+r, y+k*r, x+k*r, y+r, x, y+r)
	c.op("c", x-k*r, y+r, x-r, y+k*r, x-r, y)
	c.op("c", x-r, y-k*r, x-k*r, y-r, x, y-r)
	c.op("c", x+k*r, y-r, x+r, y-k*r, x+r, y)
}

// text appends a Helvetica text run with its baseline origin at p.
func (c *contentStream) text(p geometry.Point, size float64, s string) {
	c.raw("BT")
	c.raw("/F1 " + num(size) + " Tf")
	c.op("Td", p.X, p.Y)
	c.raw(pdfString(s) + " Tj")
	c.raw("ET")
}

func (c *contentStream) bytes() []byte {
	return c.buf.Bytes()
}

// appearance builds the normal appearance stream content for a mark whose
// points are already in PDF user space.
func appearance(a *model.Annotation, pts []geometry.Point) []byte {
	var c contentStream
	r, g, b := a.Color.RGB()

	c.raw("q")
	c.raw("/GS0 gs")
	c.op("RG", r, g, b)
	c.op("rg", r, g, b)
	c.op("w", a.Width)
	c.op("J", 1)
	c.op("j", 1)

	switch a.Tool {
	case model.ToolPen, model.ToolMarker, model.ToolLength, model.ToolAngle:
		c.path(pts, false)
		c.op("S")
	case model.ToolArea, model.ToolPerimeter:
		c.path(pts, true)
		c.op("S")
	case model.ToolCounter:
		c.circle(pts[0], counterRadius)
		c.op("f")
	case model.ToolNote:
		p := pts[0]
		c.op("re", p.X, p.Y-noteSize, noteSize, noteSize)
		c.op("f")
	}
	c.raw("Q")

	if label, at, ok := labelPlacement(a, pts); ok {
		c.raw("q")
		if a.Tool == model.ToolCounter {
			c.op("rg", 1, 1, 1)
		} else {
			c.op("rg", r, g, b)
		}
		c.text(at, labelFontSize, label)
		c.raw("Q")
	}

	return c.bytes()
}

// labelPlacement returns the measurement label drawn in the appearance and
// its baseline origin. Notes and free-hand strokes carry no label.
func labelPlacement(a *model.Annotation, pts []geometry.Point) (string, geometry.Point, bool) {
	if a.Measurement == nil || len(pts) == 0 {
		return "", geometry.Point{}, false
	}
	label := a.Measurement.Label
	w := labelWidth(label)

	var at geometry.Point
	switch a.Tool {
	case model.ToolArea, model.ToolPerimeter:
		at = geometry.Centroid(pts)
		at = geometry.Pt(at.X-w/2, at.Y-labelFontSize/2)
	case model.ToolLength:
		mid := pts[0].Add(pts[1]).Mul(0.5)
		at = geometry.Pt(mid.X-w/2, mid.Y+a.Width+2)
	case model.ToolAngle:
		v := pts[1]
		at = geometry.Pt(v.X+4, v.Y+4)
	case model.ToolCounter:
		at = geometry.Pt(pts[0].X-w/2, pts[0].Y-labelFontSize/3)
	default:
		return "", geometry.Point{}, false
	}
	return label, at, true
}

// labelWidth estimates the advance of s in Helvetica at labelFontSize.
func labelWidth(s string) float64 {
	return 0.55 * labelFontSize * float64(len([]rune(s)))
}

// winAnsi encodes s for the standard 14 fonts. Characters outside
// WinAnsiEncoding become '?'.
func winAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// pdfString returns s as a PDF literal string in WinAnsiEncoding.
func pdfString(s string) string {
	return "(" + escapeLiteral(winAnsi(s)) + ")"
}

// escapeLiteral escapes the delimiters of a literal string and writes
// bytes outside printable ASCII as octal escapes.
func escapeLiteral(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch {
		case c == '(' || c == ')' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(&sb, "\\%03o", c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// num formats v with at most three decimals and no trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
