package model

import (
	"fmt"
	"strings"
)

// Unit converts lengths measured in PDF points into a display unit.
type Unit struct {
	// Name is the unit suffix shown in labels, e.g. "mm".
	Name string `json:"name" yaml:"name"`

	// PerPoint is how many units one PDF point (1/72 inch) spans.
	PerPoint float64 `json:"per_point" yaml:"perPoint"`
}

// Built-in units.
var (
	UnitPoint      = Unit{Name: "pt", PerPoint: 1}
	UnitInch       = Unit{Name: "in", PerPoint: 1.0 / 72}
	UnitMillimeter = Unit{Name: "mm", PerPoint: 25.4 / 72}
	UnitCentimeter = Unit{Name: "cm", PerPoint: 2.54 / 72}
)

// ParseUnit returns the built-in unit with the given name.
func ParseUnit(name string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pt", "point", "points":
		return UnitPoint, nil
	case "in", "inch", "inches":
		return UnitInch, nil
	case "mm", "millimeter", "millimeters":
		return UnitMillimeter, nil
	case "cm", "centimeter", "centimeters":
		return UnitCentimeter, nil
	default:
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
}

// Length converts a length in points.
func (u Unit) Length(points float64) float64 {
	return points * u.PerPoint
}

// Area converts an area in square points.
func (u Unit) Area(squarePoints float64) float64 {
	return squarePoints * u.PerPoint * u.PerPoint
}
