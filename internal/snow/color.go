package snow

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB is a linear colour with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// RGBA is the evaluator output: a colour plus alpha.
type RGBA struct {
	R, G, B, A float64
}

var white = RGB{R: 1, G: 1, B: 1}

// Clamp forces every channel into [0, 1].
func (c RGB) Clamp() RGB {
	return RGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	c = c.Clamp()
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

// ParseHexColor parses #rrggbb (the leading # is optional).
func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGB{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

// FromColor converts any image/color value, ignoring alpha.
func FromColor(c color.Color) RGB {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return RGB{R: float64(n.R) / 0xffff, G: float64(n.G) / 0xffff, B: float64(n.B) / 0xffff}
}

// Color returns c as an opaque image/color value.
func (c RGB) Color() color.NRGBA {
	c = c.Clamp()
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 0xff}
}

// NRGBA converts the evaluator output to 8-bit non-premultiplied colour.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(clamp01(c.R)), G: to8(clamp01(c.G)), B: to8(clamp01(c.B)), A: to8(clamp01(c.A))}
}

// mix is the linear blend a + (b-a)*t.
func mix(a, b RGB, t float64) RGB {
	return RGB{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255))
}

// clamp01 also maps NaN to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
