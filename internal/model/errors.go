package model

import "errors"

// Errors returned when user input cannot be turned into model values.
var (
	// ErrUnknownTool is returned when a tool name is not recognised.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrToolNotDrawable is returned when cursor, pan or no tool is asked to draw.
	ErrToolNotDrawable = errors.New("tool does not draw annotations")

	// ErrPointCount is returned when an annotation has the wrong number of points.
	ErrPointCount = errors.New("wrong number of points")

	// ErrInvalidColor is returned for colours that are neither a palette name nor #RRGGBB.
	ErrInvalidColor = errors.New("invalid color: use a palette name or #RRGGBB")

	// ErrUnknownUnit is returned when a measurement unit is not recognised.
	ErrUnknownUnit = errors.New("unknown measurement unit")
)
