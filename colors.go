package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ProjectColor is one slot of the project palette. Active is 1 for the
// slot currently used for painting and 0 otherwise.
type ProjectColor struct {
	Color  color.RGBA
	Active int
}

var defaultColor = color.RGBA{0xff, 0xff, 0xff, 0xff}

// defaultProjectColors returns the ten palette slots a new project
// starts with. Slot one is white and selected.
func defaultProjectColors() []ProjectColor {
	seed := []string{"white", "#ffc0cb", "#add8e6", "#90ee90", "#ffff99"}
	colors := make([]ProjectColor, numPaletteSlots)
	for i := range colors {
		colors[i] = ProjectColor{Color: defaultColor}
		if i < len(seed) {
			if c, err := parseColor(seed[i]); err == nil {
				colors[i].Color = c
			}
		}
	}
	colors[0].Active = 1
	return colors
}

// padProjectColors fills colors up to the number of palette slots with
// the default color. Longer palettes and the stored active flags are kept.
func padProjectColors(colors []ProjectColor) []ProjectColor {
	out := append([]ProjectColor(nil), colors...)
	for len(out) < numPaletteSlots {
		out = append(out, ProjectColor{Color: defaultColor})
	}
	return out
}

// colorName returns the lowercase #rrggbb name of c.
func colorName(c color.RGBA) string {
	cf := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	return cf.Hex()
}

// parseColor accepts #rgb / #rrggbb hex strings and SVG color names.
func parseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color name")
	}
	if strings.HasPrefix(s, "#") {
		cf, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		r, g, b := cf.RGB255()
		return color.RGBA{r, g, b, 0xff}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown color name %q", s)
}

// hsvColor converts hue in degrees and saturation/value in [0,1].
func hsvColor(hue, sat, val float64, alpha uint8) color.RGBA {
	r, g, b := colorful.Hsv(hue, sat, val).Clamped().RGB255()
	return color.RGBA{r, g, b, alpha}
}

// cmykColor converts cyan, magenta, yellow and black components in [0,1].
func cmykColor(c, m, y, k float64, alpha uint8) color.RGBA {
	cf := colorful.Color{
		R: (1 - c) * (1 - k),
		G: (1 - m) * (1 - k),
		B: (1 - y) * (1 - k),
	}
	r, g, b := cf.Clamped().RGB255()
	return color.RGBA{r, g, b, alpha}
}
