package snow

import (
	"math"

	"github.com/iburimskiy/snowfall/internal/device"
)

// MaxLayers is the hard per-frame cap on evaluated layers, whatever the
// requested count.
const MaxLayers = 250

// Parameters is one complete, immutable-by-convention parameter set.
type Parameters struct {
	Layers     int
	Speed      float64
	Depth      float64
	Width      float64
	Opacity    float64
	FlakeColor RGB
}

// DefaultFlakeColor is #014298.
var DefaultFlakeColor = RGB{R: 1.0 / 255, G: 66.0 / 255, B: 152.0 / 255}

// DefaultParameters returns the startup parameter set for a profile.
func DefaultParameters(p device.Profile) Parameters {
	return Parameters{
		Layers:     p.DefaultLayers,
		Speed:      0.5,
		Depth:      0.5,
		Width:      0.3,
		Opacity:    1.0,
		FlakeColor: DefaultFlakeColor,
	}
}

// Preset is a named combination of density, depth, spread and speed.
type Preset struct {
	Name   string
	Layers int
	Depth  float64
	Width  float64
	Speed  float64
}

var (
	LightSnow = Preset{Name: "light", Layers: 50, Depth: 0.5, Width: 0.3, Speed: 1.2}
	HeavySnow = Preset{Name: "heavy", Layers: 150, Depth: 0.1, Width: 0.8, Speed: 1.5}
)

// Presets lists the built-in presets by name.
var Presets = map[string]Preset{
	LightSnow.Name: LightSnow,
	HeavySnow.Name: HeavySnow,
}

// Clamp returns p with every field forced into its renderable range.
// Layers is bounded by maxLayers.
func (p Parameters) Clamp(maxLayers int) Parameters {
	if maxLayers < 0 {
		maxLayers = 0
	}
	p.Layers = clampInt(p.Layers, 0, maxLayers)
	if p.Speed < 0 || math.IsNaN(p.Speed) {
		p.Speed = 0
	}
	p.Opacity = clamp01(p.Opacity)
	p.FlakeColor = p.FlakeColor.Clamp()
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
