package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tool is the drawing or measurement tool that interprets user input on the
// annotation layer. At most one tool is active in a session.
type Tool int

const (
	// ToolNone means no tool is selected. A freshly loaded document starts here.
	ToolNone Tool = iota

	// ToolCursor selects existing objects on the annotation layer.
	ToolCursor

	// ToolPan moves the viewport.
	ToolPan

	// ToolPen draws thin free-hand strokes.
	ToolPen

	// ToolMarker draws wide translucent free-hand strokes.
	ToolMarker

	// ToolArea measures the area of a polygon.
	ToolArea

	// ToolPerimeter measures the perimeter of a polygon.
	ToolPerimeter

	// ToolLength measures the distance between two points.
	ToolLength

	// ToolCounter drops numbered count markers.
	ToolCounter

	// ToolAngle measures the angle at the middle of three points.
	ToolAngle

	// ToolNote places a text note.
	ToolNote
)

// toolNames maps tools to their wire names used in scripts, JSON and notices.
var toolNames = map[Tool]string{
	ToolNone:      "none",
	ToolCursor:    "cursor",
	ToolPan:       "pan",
	ToolPen:       "pen",
	ToolMarker:    "marker",
	ToolArea:      "area",
	ToolPerimeter: "perimeter",
	ToolLength:    "length",
	ToolCounter:   "counter",
	ToolAngle:     "angle",
	ToolNote:      "note",
}

// Tools returns every selectable tool in toolbar order.
func Tools() []Tool {
	return []Tool{
		ToolCursor, ToolPan, ToolPen, ToolMarker, ToolArea,
		ToolPerimeter, ToolLength, ToolCounter, ToolAngle, ToolNote,
	}
}

// ParseTool converts a tool name to a Tool. Matching is case-insensitive.
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for tool, n := range toolNames {
		if n == name {
			return tool, nil
		}
	}
	return ToolNone, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// String returns the wire name of the tool.
func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return "unknown"
}

// Title returns the tool name with its first letter upper-cased, as shown
// in notices ("Pen tool selected").
func (t Tool) Title() string {
	return cases.Title(language.English).String(t.String())
}

// MarshalText implements encoding.TextMarshaler.
func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tool) UnmarshalText(text []byte) error {
	tool, err := ParseTool(string(text))
	if err != nil {
		return err
	}
	*t = tool
	return nil
}

// CursorStyle is the pointer shown over the annotation layer.
type CursorStyle string

// Cursor styles.
const (
	CursorDefault   CursorStyle = "default"
	CursorGrab      CursorStyle = "grab"
	CursorCrosshair CursorStyle = "crosshair"
)

// Cursor returns the pointer style for the tool.
func (t Tool) Cursor() CursorStyle {
	switch t {
	case ToolPan:
		return CursorGrab
	case ToolPen, ToolMarker:
		return CursorCrosshair
	default:
		return CursorDefault
	}
}

// FreeDraw reports whether the tool puts the layer in free-hand drawing mode.
func (t Tool) FreeDraw() bool {
	return t == ToolPen || t == ToolMarker
}

// Selection reports whether the tool enables object selection.
func (t Tool) Selection() bool {
	return t == ToolCursor
}

// Drawable reports whether the tool produces annotations.
func (t Tool) Drawable() bool {
	return t >= ToolPen && t <= ToolNote
}

// Measures reports whether annotations drawn with the tool carry a measurement.
func (t Tool) Measures() bool {
	switch t {
	case ToolArea, ToolPerimeter, ToolLength, ToolAngle, ToolCounter:
		return true
	default:
		return false
	}
}

// PointRange returns the minimum and maximum number of points an annotation
// drawn with the tool accepts. A maximum of 0 means unbounded.
func (t Tool) PointRange() (minPoints, maxPoints int) {
	switch t {
	case ToolPen, ToolMarker, ToolPerimeter:
		return 2, 0
	case ToolArea:
		return 3, 0
	case ToolLength:
		return 2, 2
	case ToolAngle:
		return 3, 3
	case ToolCounter, ToolNote:
		return 1, 1
	default:
		return 0, 0
	}
}

// CheckPoints validates the number of points for an annotation drawn with t.
func (t Tool) CheckPoints(n int) error {
	if !t.Drawable() {
		return fmt.Errorf("%w: %s", ErrToolNotDrawable, t)
	}
	minPoints, maxPoints := t.PointRange()
	if n < minPoints || (maxPoints > 0 && n > maxPoints) {
		if maxPoints == minPoints {
			return fmt.Errorf("%w: %s needs exactly %d point(s), got %d", ErrPointCount, t, minPoints, n)
		}
		return fmt.Errorf("%w: %s needs at least %d points, got %d", ErrPointCount, t, minPoints, n)
	}
	return nil
}
