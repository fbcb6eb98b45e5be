package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 9 && s[0] == '#' {
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return nil, err
		}
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("color: %v has a bad alpha: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// MustColor is ParseColor with a fallback for malformed input.
func MustColor(s string, fallback color.Color) color.Color {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// HSL builds a colour from hue in degrees and saturation/lightness in [0,1].
func HSL(h, s, l float64) color.Color {
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// WithAlpha returns c scaled to opacity a.
func WithAlpha(c color.Color, a float64) color.Color {
	if a >= 1 {
		return c
	}
	if a < 0 {
		a = 0
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * a)
	return n
}
