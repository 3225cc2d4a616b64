package session

import (
	"log/slog"

	"github.com/nao1215/drawtopia/internal/config"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/notify"
	"github.com/nao1215/drawtopia/internal/render"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	zoomMin     float64
	zoomMax     float64
	zoomStep    float64
	initialZoom float64

	palette      []model.NamedColor
	defaultColor model.Color
	penBrush     model.Brush
	markerBrush  model.Brush
	shapeBrush   model.Brush
	unit         model.Unit
	fontSize     float64
	password     string

	renderer render.PageRenderer
	notifier notify.Notifier
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{
		zoomMin:      config.DefaultZoomMin,
		zoomMax:      config.DefaultZoomMax,
		zoomStep:     config.DefaultZoomStep,
		initialZoom:  config.DefaultInitialZoom,
		palette:      model.DefaultPalette,
		defaultColor: model.DefaultColor,
		penBrush:     model.PenBrush,
		markerBrush:  model.MarkerBrush,
		shapeBrush:   model.ShapeBrush,
		unit:         model.UnitPoint,
		fontSize:     config.DefaultFontSize,
		renderer:     render.NewSheetRenderer(),
		notifier:     notify.Discard,
		logger:       slog.New(slog.DiscardHandler),
	}
}

// brush returns the stroke for tool.
func (o *options) brush(tool model.Tool) model.Brush {
	switch tool {
	case model.ToolPen:
		return o.penBrush
	case model.ToolMarker:
		return o.markerBrush
	default:
		return o.shapeBrush
	}
}

// WithZoomLimits sets the zoom bounds and the step used by ZoomIn and ZoomOut.
func WithZoomLimits(minZoom, maxZoom, step float64) Option {
	return func(o *options) {
		o.zoomMin = minZoom
		o.zoomMax = maxZoom
		o.zoomStep = step
	}
}

// WithInitialZoom sets the zoom a freshly loaded document is shown at.
func WithInitialZoom(zoom float64) Option {
	return func(o *options) {
		o.initialZoom = zoom
	}
}

// WithPalette sets the named colours SelectColor accepts.
func WithPalette(palette []model.NamedColor) Option {
	return func(o *options) {
		o.palette = palette
	}
}

// WithDefaultColor sets the colour active when the session starts.
func WithDefaultColor(c model.Color) Option {
	return func(o *options) {
		o.defaultColor = c
	}
}

// WithBrushes sets the pen, marker and shape strokes.
func WithBrushes(pen, marker, shape model.Brush) Option {
	return func(o *options) {
		o.penBrush = pen
		o.markerBrush = marker
		o.shapeBrush = shape
	}
}

// WithUnit sets the unit measurement labels are shown in.
func WithUnit(u model.Unit) Option {
	return func(o *options) {
		o.unit = u
	}
}

// WithFontSize sets the label size used by PNG export.
func WithFontSize(size float64) Option {
	return func(o *options) {
		o.fontSize = size
	}
}

// WithPassword sets the password used to open encrypted PDFs.
func WithPassword(pw string) Option {
	return func(o *options) {
		o.password = pw
	}
}

// WithRenderer replaces the page renderer.
func WithRenderer(r render.PageRenderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithNotifier sets where user notices go.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithLogger sets the logger for session operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// FromConfig returns the options matching cfg.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithZoomLimits(cfg.ZoomMin, cfg.ZoomMax, cfg.ZoomStep),
		WithInitialZoom(cfg.InitialZoom),
		WithPalette(cfg.Palette),
		WithDefaultColor(cfg.DefaultColor),
		WithBrushes(cfg.PenBrush, cfg.MarkerBrush, cfg.ShapeBrush),
		WithUnit(cfg.Unit),
		WithFontSize(cfg.FontSize),
		WithPassword(cfg.Password),
	}
}
