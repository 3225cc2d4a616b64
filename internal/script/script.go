package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/drawtopia/internal/geometry"
	"github.com/nao1215/drawtopia/internal/model"
	"gopkg.in/yaml.v3"
)

// Kind is the action a step performs.
type Kind string

// Actions.
const (
	KindTool      Kind = "tool"
	KindColor     Kind = "color"
	KindDraw      Kind = "draw"
	KindNote      Kind = "note"
	KindZoom      Kind = "zoom"
	KindPage      Kind = "page"
	KindClear     Kind = "clear"
	KindSave      Kind = "save"
	KindExportPNG Kind = "export_png"
	KindExportPDF Kind = "export_pdf"
)

// Script is a parsed markup script.
type Script struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Steps       []Action `yaml:"steps"`
}

// Action is one step of a script. Which fields are set depends on Kind.
type Action struct {
	Kind Kind

	// Tool is set for KindTool.
	Tool model.Tool

	// Color is a palette name or #RRGGBB literal, for KindColor.
	Color string

	// Points holds canvas coordinates for KindDraw and the anchor of a
	// KindNote.
	Points []geometry.Point

	// Text is the note body.
	Text string

	// Step is +1 or -1 for relative zoom and page moves ("in", "next",
	// "out", "prev"), 0 when Value holds an absolute zoom or page.
	Step  int
	Value float64

	// Path is the export destination. Empty selects the default name.
	Path string

	// Line is the line of the step in the script file.
	Line int
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, ErrNoSteps
	}
	return &s, nil
}

// Load reads and parses the script at path. A script without a name is
// named after its file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided script path
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. A step is either a bare
// action word or a single-key mapping from action to argument.
func (a *Action) UnmarshalYAML(node *yaml.Node) error {
	a.Line = node.Line

	switch node.Kind {
	case yaml.ScalarNode:
		a.Kind = Kind(node.Value)
		switch a.Kind {
		case KindClear, KindSave, KindExportPNG, KindExportPDF:
			return nil
		case KindTool, KindColor, KindDraw, KindNote, KindZoom, KindPage:
			return a.errorf(ErrInvalidArgument, "%s needs an argument", a.Kind)
		default:
			return a.errorf(ErrUnknownAction, "%q", node.Value)
		}
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return a.errorf(ErrMultipleActions, "found %d", len(node.Content)/2)
		}
		a.Kind = Kind(node.Content[0].Value)
		return a.decodeArgument(node.Content[1])
	default:
		return a.errorf(ErrInvalidArgument, "step must be an action name or a mapping")
	}
}

func (a *Action) decodeArgument(value *yaml.Node) error {
	switch a.Kind {
	case KindTool:
		var name string
		if err := value.Decode(&name); err != nil {
			return a.errorf(ErrInvalidArgument, "%v", err)
		}
		tool, err := model.ParseTool(name)
		if err != nil || tool == model.ToolNone {
			return a.errorf(ErrInvalidArgument, "unknown tool %q", name)
		}
		a.Tool = tool

	case KindColor:
		if err := value.Decode(&a.Color); err != nil || strings.TrimSpace(a.Color) == "" {
			return a.errorf(ErrInvalidArgument, "color must be a palette name or #RRGGBB")
		}

	case KindDraw:
		var raw [][]float64
		if err := value.Decode(&raw); err != nil {
			return a.errorf(ErrInvalidArgument, "draw takes a list of [x, y] points")
		}
		points, err := toPoints(raw)
		if err != nil {
			return a.errorf(ErrInvalidArgument, "%v", err)
		}
		if len(points) == 0 {
			return a.errorf(ErrInvalidArgument, "draw needs at least one point")
		}
		a.Points = points

	case KindNote:
		var note struct {
			At   []float64 `yaml:"at"`
			Text string    `yaml:"text"`
		}
		if err := value.Decode(&note); err != nil {
			return a.errorf(ErrInvalidArgument, "note takes {at: [x, y], text: ...}")
		}
		points, err := toPoints([][]float64{note.At})
		if err != nil {
			return a.errorf(ErrInvalidArgument, "note position: %v", err)
		}
		if strings.TrimSpace(note.Text) == "" {
			return a.errorf(ErrInvalidArgument, "note text is empty")
		}
		a.Points = points
		a.Text = note.Text

	case KindZoom:
		return a.decodeMove(value, "in", "out", func(s string) (float64, bool) {
			v, err := strconv.ParseFloat(s, 64)
			return v, err == nil && v > 0
		})

	case KindPage:
		return a.decodeMove(value, "next", "prev", func(s string) (float64, bool) {
			v, err := strconv.Atoi(s)
			return float64(v), err == nil && v >= 1
		})

	case KindClear, KindSave:
		var on bool
		if err := value.Decode(&on); err != nil || !on {
			return a.errorf(ErrInvalidArgument, "%s takes no argument or true", a.Kind)
		}

	case KindExportPNG, KindExportPDF:
		if value.Tag == "!!null" {
			return nil
		}
		if err := value.Decode(&a.Path); err != nil {
			return a.errorf(ErrInvalidArgument, "%s takes a file path", a.Kind)
		}

	default:
		return a.errorf(ErrUnknownAction, "%q", a.Kind)
	}
	return nil
}

// decodeMove handles the "forward", "back" or absolute argument of zoom
// and page.
func (a *Action) decodeMove(value *yaml.Node, forward, back string, absolute func(string) (float64, bool)) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return a.errorf(ErrInvalidArgument, "%v", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case forward:
		a.Step = 1
	case back, "previous":
		a.Step = -1
	default:
		v, ok := absolute(s)
		if !ok {
			return a.errorf(ErrInvalidArgument, "%s must be %q, %q or a positive number, got %q", a.Kind, forward, back, s)
		}
		a.Value = v
	}
	return nil
}

func (a *Action) errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", a.Line, sentinel, fmt.Sprintf(format, args...))
}

func toPoints(raw [][]float64) ([]geometry.Point, error) {
	points := make([]geometry.Point, 0, len(raw))
	for i, xy := range raw {
		if len(xy) != 2 {
			return nil, fmt.Errorf("point %d must be [x, y]", i+1)
		}
		points = append(points, geometry.Pt(xy[0], xy[1]))
	}
	return points, nil
}

// String describes the action for logs and reports, e.g. "zoom in" or
// "draw 4 points".
func (a Action) String() string {
	switch a.Kind {
	case KindTool:
		return "tool " + a.Tool.String()
	case KindColor:
		return "color " + a.Color
	case KindDraw:
		if len(a.Points) == 1 {
			return "draw 1 point"
		}
		return fmt.Sprintf("draw %d points", len(a.Points))
	case KindNote:
		return fmt.Sprintf("note %q", a.Text)
	case KindZoom:
		return "zoom " + a.moveString("in", "out")
	case KindPage:
		return "page " + a.moveString("next", "prev")
	case KindExportPNG, KindExportPDF:
		if a.Path == "" {
			return string(a.Kind)
		}
		return string(a.Kind) + " " + a.Path
	default:
		return string(a.Kind)
	}
}

func (a Action) moveString(forward, back string) string {
	switch a.Step {
	case 1:
		return forward
	case -1:
		return back
	default:
		return strconv.FormatFloat(a.Value, 'f', -1, 64)
	}
}

// ExpandPath substitutes {name} with the document name without its
// extension and {page} with the page number.
func ExpandPath(pattern, document string, page int) string {
	name := strings.TrimSuffix(filepath.Base(document), filepath.Ext(document))
	r := strings.NewReplacer("{name}", name, "{page}", strconv.Itoa(page))
	return r.Replace(pattern)
}

// DefaultPDFName is the export name used when export_pdf has no path.
func DefaultPDFName(document string) string {
	return ExpandPath("{name}-annotated.pdf", document, 0)
}
