package processing

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 255, 0, 255},
	"blue":    {0, 170, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"gold":    {255, 204, 0, 255},
	"orange":  {255, 165, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"purple":  {128, 0, 128, 255},
	"gray":    {128, 128, 128, 255},
	"pink":    {255, 192, 203, 255},
}

// NamedColor looks up an overlay colour by name, case-insensitively
func NamedColor(name string) (color.NRGBA, error) {
	c, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}

// ColorNames lists the known colour names in sorted order
func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for n := range namedColors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SpacedColors returns n opaque colours evenly spaced over the 24-bit RGB
// range, skipping black, for telling tracks apart.
func SpacedColors(n int) []color.NRGBA {
	if n <= 0 {
		return nil
	}
	const maxval = 255 * 255 * 255
	interval := int(maxval / (float64(n) + 0.5))
	cols := make([]color.NRGBA, 0, n)
	for v := interval; v < maxval && len(cols) < n; v += interval {
		cols = append(cols, color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255})
	}
	return cols
}
