// Package device classifies the host into a coarse performance tier and maps
// the tier to a fixed rendering profile.
package device

import "fmt"

// Tier is a coarse device-capability class.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// MinLayers is the global layer floor shared by every tier.
const MinLayers = 15

// Mobile API-level thresholds used by ClassifyLevels.
const (
	legacyAPILevel         = 23
	modernGraphicsAPILevel = 26
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Profile is the fixed parameter bundle associated with a tier.
type Profile struct {
	Tier               Tier
	MaxLayers          int
	DefaultLayers      int
	UseAdaptiveFPS     bool
	RenderContinuously bool
}

var profiles = [...]Profile{
	TierLow:    {Tier: TierLow, MaxLayers: 50, DefaultLayers: 25, UseAdaptiveFPS: true, RenderContinuously: false},
	TierMedium: {Tier: TierMedium, MaxLayers: 100, DefaultLayers: 50, UseAdaptiveFPS: true, RenderContinuously: false},
	TierHigh:   {Tier: TierHigh, MaxLayers: 150, DefaultLayers: 75, UseAdaptiveFPS: false, RenderContinuously: true},
}

// Signals are the raw device probes the classifier consumes.
type Signals struct {
	TotalMemoryGB          float64
	CPUCores               int
	APILevel               int
	IsLegacyPlatform       bool
	SupportsModernGraphics bool
	LowPowerMode           bool
}

// Classify maps device signals to a tier. The first matching rule wins.
func Classify(s Signals) Tier {
	switch {
	case s.TotalMemoryGB < 2.0 || s.IsLegacyPlatform || s.CPUCores < 4:
		return TierLow
	case s.TotalMemoryGB >= 4.0 && s.CPUCores >= 8 && s.SupportsModernGraphics:
		return TierHigh
	default:
		return TierMedium
	}
}

// ClassifyLevels classifies from memory, core count and a mobile style API
// level. Levels below 23 count as legacy; levels from 26 on have the modern
// graphics API.
func ClassifyLevels(memoryGB float64, cores, apiLevel int) Tier {
	return Classify(Signals{
		TotalMemoryGB:          memoryGB,
		CPUCores:               cores,
		APILevel:               apiLevel,
		IsLegacyPlatform:       apiLevel < legacyAPILevel,
		SupportsModernGraphics: apiLevel >= modernGraphicsAPILevel,
	})
}

// DeriveProfile returns the constant profile for t. Unknown tiers fall back
// to the medium profile.
func DeriveProfile(t Tier) Profile {
	if t < TierLow || t > TierHigh {
		return profiles[TierMedium]
	}
	return profiles[t]
}

// Continuous reports whether the profile renders on every display refresh
// once the startup power-save signal is taken into account.
func (p Profile) Continuous(lowPower bool) bool {
	return p.RenderContinuously && !lowPower
}

// TickRate is the self-rescheduling cadence used when rendering on demand.
func (p Profile) TickRate() int {
	if p.Tier == TierLow {
		return 30
	}
	return 60
}

// ClampLayers clamps n into [0, MaxLayers].
func (p Profile) ClampLayers(n int) int {
	if n < 0 {
		return 0
	}
	if n > p.MaxLayers {
		return p.MaxLayers
	}
	return n
}
