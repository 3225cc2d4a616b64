package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/drawtopia/internal/geometry"
	"github.com/nao1215/drawtopia/internal/model"
	"github.com/spf13/cobra"
)

// errNotMeasurement is returned when measure is asked for a tool that
// produces no quantity.
var errNotMeasurement = errors.New("not a measurement tool (use area, perimeter, length or angle)")

// errInvalidPoint is returned for a point argument that is not "x,y".
var errInvalidPoint = errors.New("invalid point: expected x,y")

// NewMeasureCmd creates the measure command.
func NewMeasureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure <area|perimeter|length|angle> <x,y>...",
		Short: "Compute a measurement from points",
		Long: `Measure computes what a measurement tool would label, from points
given in page points (1/72 inch).

  area       polygon area (shoelace), 3 or more points
  perimeter  closed polygon perimeter, 2 or more points
  length     distance between exactly 2 points
  angle      angle at the middle of exactly 3 points, in degrees

Examples:
  drawtopia measure length 0,0 30,40
  drawtopia measure area --unit mm 0,0 72,0 72,72 0,72
  drawtopia measure angle 1,0 0,0 0,1

Negative coordinates must follow "--":
  drawtopia measure length -- -10,0 10,0`,
		Args: cobra.MinimumNArgs(2),
		RunE: runMeasureCmd,
	}

	cmd.Flags().StringP("unit", "u", "pt", "Unit for lengths and areas: pt, in, mm or cm")
	cmd.Flags().Float64P("scale", "S", 1, "Drawing scale applied to lengths (100 for 1:100)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

func runMeasureCmd(cmd *cobra.Command, args []string) error {
	tool, err := model.ParseTool(args[0])
	if err != nil {
		return err
	}
	if !tool.Measures() || tool == model.ToolCounter {
		return fmt.Errorf("%s: %w", args[0], errNotMeasurement)
	}

	points, err := parsePoints(args[1:])
	if err != nil {
		return err
	}
	if err := tool.CheckPoints(len(points)); err != nil {
		return err
	}

	unitName, err := cmd.Flags().GetString("unit")
	if err != nil {
		return err
	}
	unit, err := model.ParseUnit(unitName)
	if err != nil {
		return err
	}
	scale, err := cmd.Flags().GetFloat64("scale")
	if err != nil {
		return err
	}
	if scale <= 0 {
		return fmt.Errorf("invalid scale %v: must be positive", scale)
	}
	unit.PerPoint *= scale

	m := model.Measure(tool, points, unit, 0)

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(m)
	}
	fmt.Fprintln(out, m.Label)
	return nil
}

// parsePoints parses "x,y" arguments.
func parsePoints(args []string) ([]geometry.Point, error) {
	points := make([]geometry.Point, 0, len(args))
	for _, arg := range args {
		xs, ys, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errInvalidPoint, arg)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidPoint, arg)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidPoint, arg)
		}
		points = append(points, geometry.Pt(x, y))
	}
	return points, nil
}
