package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/drawtopia/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "drawtopia"

	// DefaultZoomMin and DefaultZoomMax bound the viewport scale.
	DefaultZoomMin = 0.5
	DefaultZoomMax = 3.0

	// DefaultZoomStep is the increment applied by zoom in and zoom out.
	DefaultZoomStep = 0.2

	// DefaultInitialZoom is the scale a freshly loaded document is shown at.
	DefaultInitialZoom = 1.0

	// DefaultBatchSize is the number of documents annotated concurrently.
	DefaultBatchSize = 4

	// DefaultFontSize is the size of measurement labels in page points.
	DefaultFontSize = 10.0

	// DefaultOutDir is where exports are written when a script names a
	// relative file.
	DefaultOutDir = "."
)

// Config holds all configuration options for drawtopia.
// It is populated from defaults, then the .drawtopia file, then CLI flags,
// and passed down explicitly rather than kept in globals.
type Config struct {
	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .drawtopia is searched in the current directory and then in
	// the user's home directory.
	ConfigFilePath string

	// Documents is the list of PDF files to annotate.
	Documents []string

	// ScriptPath is the markup script applied to every document.
	ScriptPath string

	// Palette is the set of named colours scripts may refer to.
	Palette []model.NamedColor

	// DefaultColor is the colour selected when a document is loaded.
	DefaultColor model.Color

	// PenBrush, MarkerBrush and ShapeBrush are the strokes applied by the
	// pen, the marker and every other drawing tool.
	PenBrush    model.Brush
	MarkerBrush model.Brush
	ShapeBrush  model.Brush

	// ZoomMin, ZoomMax, ZoomStep and InitialZoom control the viewport scale.
	ZoomMin     float64
	ZoomMax     float64
	ZoomStep    float64
	InitialZoom float64

	// Unit converts page points into the unit shown in measurement labels.
	Unit model.Unit

	// FontSize is the label size in page points.
	FontSize float64

	// OutDir is the base directory for relative export paths.
	OutDir string

	// Password opens encrypted PDFs. It is used as both user and owner password.
	Password string

	// BatchSize is the number of documents processed concurrently.
	BatchSize int

	// StopOnError aborts a script at the first failing step.
	// By default failures are reported and the script continues.
	StopOnError bool

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means human-readable text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the report destination. Empty means stdout.
	ReportFile string

	// DBDir is the directory holding the export journal.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB records each run in the export journal.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	palette := make([]model.NamedColor, len(model.DefaultPalette))
	copy(palette, model.DefaultPalette)

	return &Config{
		Palette:      palette,
		DefaultColor: model.DefaultColor,
		PenBrush:     model.PenBrush,
		MarkerBrush:  model.MarkerBrush,
		ShapeBrush:   model.ShapeBrush,
		ZoomMin:      DefaultZoomMin,
		ZoomMax:      DefaultZoomMax,
		ZoomStep:     DefaultZoomStep,
		InitialZoom:  DefaultInitialZoom,
		Unit:         model.UnitPoint,
		FontSize:     DefaultFontSize,
		OutDir:       DefaultOutDir,
		BatchSize:    DefaultBatchSize,
		SaveToDB:     true,
		DBDir:        XDGDataDir(),
	}
}

// Brush returns the configured brush for tool.
func (c *Config) Brush(tool model.Tool) model.Brush {
	switch tool {
	case model.ToolPen:
		return c.PenBrush
	case model.ToolMarker:
		return c.MarkerBrush
	default:
		return c.ShapeBrush
	}
}

// XDGDataDir returns the XDG data directory for drawtopia.
// On Linux: ~/.local/share/drawtopia
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for drawtopia.
// On Linux: ~/.config/drawtopia
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks a configuration for an annotate run: the settings plus
// at least one document and a script. It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Documents) == 0 {
		return ErrNoDocument
	}
	if c.ScriptPath == "" {
		return ErrNoScript
	}
	return c.ValidateSettings()
}

// ValidateSettings checks everything except the run targets.
func (c *Config) ValidateSettings() error {
	if c.ZoomMin <= 0 || c.ZoomMax < c.ZoomMin {
		return ErrInvalidZoomRange
	}
	if c.ZoomStep <= 0 {
		return ErrInvalidZoomStep
	}
	if c.InitialZoom < c.ZoomMin || c.InitialZoom > c.ZoomMax {
		return ErrInvalidInitialZoom
	}

	if len(c.Palette) == 0 {
		return ErrEmptyPalette
	}
	for _, nc := range c.Palette {
		if err := nc.Color.Validate(); err != nil {
			return err
		}
	}
	if err := c.DefaultColor.Validate(); err != nil {
		return err
	}

	if !c.PenBrush.Valid() || !c.MarkerBrush.Valid() || !c.ShapeBrush.Valid() {
		return ErrInvalidBrush
	}

	if c.Unit.Name == "" || c.Unit.PerPoint <= 0 {
		return ErrInvalidUnit
	}

	if c.FontSize <= 0 {
		return ErrInvalidFontSize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
