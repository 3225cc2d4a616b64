package model

import (
	"fmt"
	"strconv"

	"github.com/nao1215/drawtopia/internal/geometry"
)

// Annotation is a user mark on one page of the document.
// Points are stored in page space: PDF points from the top-left corner of
// the page's media box, independent of zoom.
type Annotation struct {
	// ID is unique within a session.
	ID int `json:"id"`

	// Page is the 1-based page the annotation belongs to.
	Page int `json:"page"`

	Tool    Tool             `json:"tool"`
	Color   Color            `json:"color"`
	Width   float64          `json:"width"`
	Opacity float64          `json:"opacity"`
	Points  []geometry.Point `json:"points"`

	// Text is the body of a note annotation.
	Text string `json:"text,omitempty"`

	// Measurement is set for measurement tools.
	Measurement *Measurement `json:"measurement,omitempty"`
}

// Label returns the text shown next to the annotation: the measurement
// label for measurement tools, the note body for notes.
func (a *Annotation) Label() string {
	if a.Measurement != nil {
		return a.Measurement.Label
	}
	return a.Text
}

// MeasurementKind names the quantity a measurement holds.
type MeasurementKind string

// Measurement kinds.
const (
	MeasureArea      MeasurementKind = "area"
	MeasurePerimeter MeasurementKind = "perimeter"
	MeasureLength    MeasurementKind = "length"
	MeasureAngle     MeasurementKind = "angle"
	MeasureCount     MeasurementKind = "count"
)

// Measurement is the quantity attached to a measurement annotation.
type Measurement struct {
	Kind  MeasurementKind `json:"kind"`
	Value float64         `json:"value"`
	Unit  string          `json:"unit"`
	Label string          `json:"label"`
}

// Measure computes the measurement for points drawn with tool, converting
// page-space lengths with unit. ordinal is the running number used by the
// counter tool. Tools that do not measure return nil.
func Measure(tool Tool, points []geometry.Point, unit Unit, ordinal int) *Measurement {
	switch tool {
	case ToolArea:
		v := unit.Area(geometry.Area(points))
		return &Measurement{Kind: MeasureArea, Value: v, Unit: unit.Name + "²", Label: formatValue(v, unit.Name+"²")}
	case ToolPerimeter:
		v := unit.Length(geometry.Perimeter(points))
		return &Measurement{Kind: MeasurePerimeter, Value: v, Unit: unit.Name, Label: formatValue(v, unit.Name)}
	case ToolLength:
		if len(points) < 2 {
			return nil
		}
		v := unit.Length(geometry.Length(points[0], points[1]))
		return &Measurement{Kind: MeasureLength, Value: v, Unit: unit.Name, Label: formatValue(v, unit.Name)}
	case ToolAngle:
		if len(points) < 3 {
			return nil
		}
		v := geometry.Angle(points[0], points[1], points[2])
		return &Measurement{Kind: MeasureAngle, Value: v, Unit: "°", Label: strconv.FormatFloat(v, 'f', 1, 64) + "°"}
	case ToolCounter:
		return &Measurement{Kind: MeasureCount, Value: float64(ordinal), Label: strconv.Itoa(ordinal)}
	default:
		return nil
	}
}

// formatValue renders v with two decimals followed by the unit suffix.
func formatValue(v float64, unit string) string {
	return fmt.Sprintf("%.2f %s", v, unit)
}
