package model

// Brush is the stroke applied to annotations drawn with a tool.
type Brush struct {
	// Width is the stroke width in page points.
	Width float64 `json:"width" yaml:"width"`

	// Opacity is the stroke alpha in [0, 1].
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

// Stock brushes.
var (
	PenBrush    = Brush{Width: 2, Opacity: 1}
	MarkerBrush = Brush{Width: 12, Opacity: 0.5}
	ShapeBrush  = Brush{Width: 2, Opacity: 1}
)

// DefaultBrush returns the stock brush for tool.
func DefaultBrush(tool Tool) Brush {
	switch tool {
	case ToolPen:
		return PenBrush
	case ToolMarker:
		return MarkerBrush
	default:
		return ShapeBrush
	}
}

// Valid reports whether the brush has a positive width and an opacity in (0, 1].
func (b Brush) Valid() bool {
	return b.Width > 0 && b.Opacity > 0 && b.Opacity <= 1
}
