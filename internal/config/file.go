package config

import (
	"fmt"

	"github.com/nao1215/drawtopia/internal/model"
)

// File represents the structure of the .drawtopia configuration file.
// Every field is optional; zero values leave the defaults untouched.
type File struct {
	// DefaultColor is a palette name or #RRGGBB.
	DefaultColor string `yaml:"defaultColor,omitempty"`

	// Palette replaces the built-in colour picker when non-empty.
	Palette []model.NamedColor `yaml:"palette,omitempty"`

	// Brushes overrides the stock strokes.
	Brushes BrushesFile `yaml:"brushes,omitempty"`

	// Zoom overrides the viewport scale limits.
	Zoom ZoomFile `yaml:"zoom,omitempty"`

	// Measure configures measurement labels.
	Measure MeasureFile `yaml:"measure,omitempty"`

	// Export configures output files.
	Export ExportFile `yaml:"export,omitempty"`

	// Batch is the number of documents processed concurrently.
	Batch int `yaml:"batch,omitempty"`
}

// BrushesFile holds per-tool brush overrides.
type BrushesFile struct {
	Pen    *model.Brush `yaml:"pen,omitempty"`
	Marker *model.Brush `yaml:"marker,omitempty"`
	Shape  *model.Brush `yaml:"shape,omitempty"`
}

// ZoomFile holds viewport overrides.
type ZoomFile struct {
	Min     float64 `yaml:"min,omitempty"`
	Max     float64 `yaml:"max,omitempty"`
	Step    float64 `yaml:"step,omitempty"`
	Initial float64 `yaml:"initial,omitempty"`
}

// MeasureFile holds measurement settings.
type MeasureFile struct {
	// Unit is one of pt, in, mm, cm.
	Unit string `yaml:"unit,omitempty"`

	// Scale multiplies every converted length, for drawings made to scale
	// (100 for a 1:100 plan).
	Scale float64 `yaml:"scale,omitempty"`
}

// ExportFile holds output settings.
type ExportFile struct {
	// Dir is the base directory for relative export paths.
	Dir string `yaml:"dir,omitempty"`

	// FontSize is the measurement label size in page points.
	FontSize float64 `yaml:"fontSize,omitempty"`
}

// Apply merges the file settings into cfg. Fields left empty in the file
// keep the value already in cfg.
func (f *File) Apply(cfg *Config) error {
	if len(f.Palette) > 0 {
		cfg.Palette = f.Palette
	}

	if f.DefaultColor != "" {
		c, err := model.ParseColor(f.DefaultColor, cfg.Palette)
		if err != nil {
			return fmt.Errorf("defaultColor: %w", err)
		}
		cfg.DefaultColor = c
	}

	if f.Brushes.Pen != nil {
		cfg.PenBrush = *f.Brushes.Pen
	}
	if f.Brushes.Marker != nil {
		cfg.MarkerBrush = *f.Brushes.Marker
	}
	if f.Brushes.Shape != nil {
		cfg.ShapeBrush = *f.Brushes.Shape
	}

	if f.Zoom.Min != 0 {
		cfg.ZoomMin = f.Zoom.Min
	}
	if f.Zoom.Max != 0 {
		cfg.ZoomMax = f.Zoom.Max
	}
	if f.Zoom.Step != 0 {
		cfg.ZoomStep = f.Zoom.Step
	}
	if f.Zoom.Initial != 0 {
		cfg.InitialZoom = f.Zoom.Initial
	}

	if f.Measure.Unit != "" {
		u, err := model.ParseUnit(f.Measure.Unit)
		if err != nil {
			return fmt.Errorf("measure.unit: %w", err)
		}
		cfg.Unit = u
	}
	if f.Measure.Scale != 0 {
		cfg.Unit.PerPoint *= f.Measure.Scale
	}

	if f.Export.Dir != "" {
		cfg.OutDir = f.Export.Dir
	}
	if f.Export.FontSize != 0 {
		cfg.FontSize = f.Export.FontSize
	}

	if f.Batch != 0 {
		cfg.BatchSize = f.Batch
	}

	return nil
}
