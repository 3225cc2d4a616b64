package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an opaque stroke colour in #RRGGBB form.
type Color string

// DefaultColor is the colour selected when a session starts.
const DefaultColor Color = "#000000"

// NamedColor is a palette entry.
type NamedColor struct {
	Name  string `json:"name" yaml:"name"`
	Color Color  `json:"color" yaml:"color"`
}

// DefaultPalette is the colour picker offered by the toolbar.
var DefaultPalette = []NamedColor{
	{Name: "Black", Color: "#000000"},
	{Name: "Red", Color: "#FF0000"},
	{Name: "Orange", Color: "#FF9500"},
	{Name: "Yellow", Color: "#FFCC00"},
	{Name: "Green", Color: "#4CD964"},
	{Name: "Light Blue", Color: "#5AC8FA"},
	{Name: "Blue", Color: "#007AFF"},
	{Name: "Purple", Color: "#5856D6"},
}

// ParseColor resolves s against palette by name (case-insensitive, spaces
// optional) or parses it as a #RRGGBB literal. The result is upper-cased.
func ParseColor(s string, palette []NamedColor) (Color, error) {
	s = strings.TrimSpace(s)
	key := normalizeColorName(s)
	for _, nc := range palette {
		if normalizeColorName(nc.Name) == key {
			return nc.Color.normalize()
		}
	}
	return Color(s).normalize()
}

// normalizeColorName folds case and strips spaces and dashes so that
// "light blue", "LightBlue" and "light-blue" all match.
func normalizeColorName(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(s))
}

// normalize validates c and returns it upper-cased.
func (c Color) normalize() (Color, error) {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color(strings.ToUpper(s)), nil
}

// Validate reports whether c is a well-formed #RRGGBB colour.
func (c Color) Validate() error {
	_, err := c.normalize()
	return err
}

// RGB returns the colour components scaled to [0, 1].
// Malformed colours yield black.
func (c Color) RGB() (r, g, b float64) {
	n, err := c.normalize()
	if err != nil {
		return 0, 0, 0
	}
	v, _ := strconv.ParseUint(string(n[1:]), 16, 32) //nolint:errcheck // validated by normalize
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255
}

// String returns the #RRGGBB form.
func (c Color) String() string {
	return string(c)
}
