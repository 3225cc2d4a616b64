package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate and can be matched with errors.Is.
var (
	// ErrNoDocument is returned when no PDF is given to annotate.
	ErrNoDocument = errors.New("no document specified: provide one or more PDF files")

	// ErrNoScript is returned when annotate runs without a markup script.
	ErrNoScript = errors.New("no markup script specified: use --script")

	// ErrInvalidZoomRange is returned when the zoom bounds are not positive
	// or the maximum is below the minimum.
	ErrInvalidZoomRange = errors.New("invalid zoom range: min must be positive and not above max")

	// ErrInvalidZoomStep is returned when the zoom step is not positive.
	ErrInvalidZoomStep = errors.New("invalid zoom step: must be positive")

	// ErrInvalidInitialZoom is returned when the initial zoom is outside the range.
	ErrInvalidInitialZoom = errors.New("invalid initial zoom: must be within the zoom range")

	// ErrEmptyPalette is returned when the palette has no colours.
	ErrEmptyPalette = errors.New("palette must contain at least one colour")

	// ErrInvalidBrush is returned when a brush has a non-positive width or an
	// opacity outside (0, 1].
	ErrInvalidBrush = errors.New("invalid brush: width must be positive and opacity within (0, 1]")

	// ErrInvalidUnit is returned when the measurement unit has no name or scale.
	ErrInvalidUnit = errors.New("invalid measurement unit")

	// ErrInvalidFontSize is returned when the label font size is not positive.
	ErrInvalidFontSize = errors.New("invalid font size: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
