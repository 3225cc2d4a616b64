package render

import "errors"

var (
	// ErrInvalidScale is returned for non-positive render scales.
	ErrInvalidScale = errors.New("render scale must be positive")

	// ErrImageTooLarge is returned when a page would exceed MaxPixels.
	ErrImageTooLarge = errors.New("rendered page is too large")
)
