package pdfdoc

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/golang/geo/r2"
	"github.com/nao1215/drawtopia/internal/geometry"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// annotationAuthor is written to the /T entry of every exported annotation.
const annotationAuthor = "drawtopia"

// annotationFlagPrint is the /F bit that makes an annotation print.
const annotationFlagPrint = 4

// ToUserSpace converts a page-space point (origin top-left of the box,
// y down) to PDF user space (y up).
func (b Box) ToUserSpace(p geometry.Point) geometry.Point {
	return geometry.Pt(p.X+b.LLX, b.URY-p.Y)
}

// Subtype returns the PDF annotation subtype used for marks drawn with tool.
func Subtype(tool model.Tool) string {
	switch tool {
	case model.ToolPen, model.ToolMarker:
		return "Ink"
	case model.ToolArea, model.ToolPerimeter:
		return "Polygon"
	case model.ToolLength:
		return "Line"
	case model.ToolAngle:
		return "PolyLine"
	case model.ToolCounter:
		return "Circle"
	case model.ToolNote:
		return "Text"
	default:
		return ""
	}
}

// intent returns the /IT entry for measurement marks.
func intent(tool model.Tool) string {
	switch tool {
	case model.ToolArea, model.ToolPerimeter:
		return "PolygonDimension"
	case model.ToolLength:
		return "LineDimension"
	case model.ToolAngle:
		return "PolyLineDimension"
	default:
		return ""
	}
}

// Export writes the document to w with annotations embedded as PDF
// annotation objects. Each write starts from the original bytes, so
// exporting twice never duplicates marks.
func (d *Document) Export(w io.Writer, annotations []model.Annotation) error {
	ctx, err := d.context()
	if err != nil {
		return err
	}

	now := types.DateString(time.Now())
	for i := range annotations {
		if err := d.addAnnotation(ctx, &annotations[i], now); err != nil {
			return fmt.Errorf("failed to embed annotation %d: %w", annotations[i].ID, err)
		}
	}

	if err := api.WriteContext(ctx, w); err != nil {
		return fmt.Errorf("failed to write %s: %w", d.Name, err)
	}
	return nil
}

func (d *Document) addAnnotation(ctx *pdfmodel.Context, a *model.Annotation, modified string) error {
	page, err := d.Page(a.Page)
	if err != nil {
		return err
	}
	if err := a.Tool.CheckPoints(len(a.Points)); err != nil {
		return err
	}

	pts := make([]geometry.Point, len(a.Points))
	for i, p := range a.Points {
		pts[i] = page.MediaBox.ToUserSpace(p)
	}
	rect := annotationRect(a, pts)

	pageDict, pageRef, _, err := ctx.PageDict(a.Page, false)
	if err != nil {
		return err
	}

	apRef, err := appearanceStream(ctx, rect, appearance(a, pts), a.Opacity)
	if err != nil {
		return err
	}

	r, g, b := a.Color.RGB()
	annot := types.Dict{
		"Type":     types.Name("Annot"),
		"Subtype":  types.Name(Subtype(a.Tool)),
		"Rect":     rectArray(rect),
		"NM":       types.StringLiteral("drawtopia-" + strconv.Itoa(a.ID)),
		"T":        types.StringLiteral(annotationAuthor),
		"M":        types.StringLiteral(modified),
		"F":        types.Integer(annotationFlagPrint),
		"C":        types.Array{types.Float(r), types.Float(g), types.Float(b)},
		"CA":       types.Float(a.Opacity),
		"BS":       types.Dict{"Type": types.Name("Border"), "W": types.Float(a.Width), "S": types.Name("S")},
		"AP":       types.Dict{"N": *apRef},
		"Contents": textString(a.Label()),
	}
	if pageRef != nil {
		annot["P"] = *pageRef
	}
	if it := intent(a.Tool); it != "" {
		annot["IT"] = types.Name(it)
	}

	switch a.Tool {
	case model.ToolPen, model.ToolMarker:
		annot["InkList"] = types.Array{coords(pts)}
	case model.ToolArea, model.ToolPerimeter, model.ToolAngle:
		annot["Vertices"] = coords(pts)
	case model.ToolLength:
		annot["L"] = coords(pts)
	case model.ToolCounter:
		annot["IC"] = types.Array{types.Float(r), types.Float(g), types.Float(b)}
	case model.ToolNote:
		annot["Name"] = types.Name("Comment")
		annot["Open"] = types.Boolean(false)
	}

	ref, err := ctx.IndRefForNewObject(annot)
	if err != nil {
		return err
	}
	return appendAnnot(ctx, pageDict, *ref)
}

// appearanceStream registers a form XObject holding content, clipped to
// rect, with the opacity applied through an ExtGState.
func appearanceStream(ctx *pdfmodel.Context, rect r2.Rect, content []byte, opacity float64) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	sd.InsertName("Type", "XObject")
	sd.InsertName("Subtype", "Form")
	sd.Insert("BBox", rectArray(rect))
	sd.Insert("Resources", types.Dict{
		"ExtGState": types.Dict{
			"GS0": types.Dict{
				"Type": types.Name("ExtGState"),
				"CA":   types.Float(opacity),
				"ca":   types.Float(opacity),
			},
		},
		"Font": types.Dict{
			"F1": types.Dict{
				"Type":     types.Name("Font"),
				"Subtype":  types.Name("Type1"),
				"BaseFont": types.Name("Helvetica"),
				"Encoding": types.Name("WinAnsiEncoding"),
			},
		},
	})
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(*sd)
}

// appendAnnot adds ref to the page's /Annots array, creating it if needed.
func appendAnnot(ctx *pdfmodel.Context, page types.Dict, ref types.IndirectRef) error {
	obj, found := page.Find("Annots")
	if !found || obj == nil {
		page.Insert("Annots", types.Array{ref})
		return nil
	}
	annots, err := ctx.DereferenceArray(obj)
	if err != nil {
		return err
	}
	page.Update("Annots", append(annots, ref))
	return nil
}

// annotationRect is the bounding box of the mark including its stroke,
// counter dot, note icon and measurement label.
func annotationRect(a *model.Annotation, pts []geometry.Point) r2.Rect {
	rect := geometry.Bounds(pts)

	switch a.Tool {
	case model.ToolCounter:
		rect = rect.ExpandedByMargin(counterRadius)
	case model.ToolNote:
		rect = rect.AddPoint(geometry.Pt(pts[0].X+noteSize, pts[0].Y-noteSize))
	}

	if label, at, ok := labelPlacement(a, pts); ok {
		rect = rect.AddPoint(geometry.Pt(at.X, at.Y-labelFontSize/3))
		rect = rect.AddPoint(geometry.Pt(at.X+labelWidth(label), at.Y+labelFontSize))
	}
	return rect.ExpandedByMargin(a.Width/2 + 1)
}

func rectArray(r r2.Rect) types.Array {
	return types.Array{types.Float(r.X.Lo), types.Float(r.Y.Lo), types.Float(r.X.Hi), types.Float(r.Y.Hi)}
}

// coords flattens points into [x1 y1 x2 y2 ...].
func coords(pts []geometry.Point) types.Array {
	arr := make(types.Array, 0, 2*len(pts))
	for _, p := range pts {
		arr = append(arr, types.Float(p.X), types.Float(p.Y))
	}
	return arr
}

// textString encodes s as a PDF text string: a literal for printable
// ASCII, UTF-16BE with a byte order mark otherwise.
func textString(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			ascii = false
			break
		}
	}
	if ascii {
		return types.StringLiteral(escapeLiteral([]byte(s)))
	}

	buf := []byte{0xfe, 0xff}
	for _, u := range utf16.Encode([]rune(s)) {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return types.HexLiteral(hex.EncodeToString(buf))
}
