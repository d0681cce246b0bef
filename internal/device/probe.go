package device

import (
	"runtime"

	"github.com/iburimskiy/snowfall/internal/log"
)

// Conservative fallbacks used when a probe is unavailable. They keep the
// classifier at medium or below.
const (
	fallbackMemoryGB = 2.0
	fallbackAPILevel = legacyAPILevel
)

// Overrides replace probed signals. Nil fields keep the probed value.
type Overrides struct {
	MemoryGB       *float64 `yaml:"memory_gb,omitempty"`
	CPUCores       *int     `yaml:"cpu_cores,omitempty"`
	APILevel       *int     `yaml:"api_level,omitempty"`
	Legacy         *bool    `yaml:"legacy,omitempty"`
	ModernGraphics *bool    `yaml:"modern_graphics,omitempty"`
	LowPower       *bool    `yaml:"low_power,omitempty"`
}

// Apply returns s with every set override substituted.
func (o Overrides) Apply(s Signals) Signals {
	if o.MemoryGB != nil {
		s.TotalMemoryGB = *o.MemoryGB
	}
	if o.CPUCores != nil {
		s.CPUCores = *o.CPUCores
	}
	if o.APILevel != nil {
		s.APILevel = *o.APILevel
	}
	if o.Legacy != nil {
		s.IsLegacyPlatform = *o.Legacy
	}
	if o.ModernGraphics != nil {
		s.SupportsModernGraphics = *o.ModernGraphics
	}
	if o.LowPower != nil {
		s.LowPowerMode = *o.LowPower
	}
	return s
}

// Probe gathers device signals from the running host. It never fails: a
// signal that cannot be read is replaced by a conservative default.
func Probe() Signals {
	s := Signals{
		TotalMemoryGB: fallbackMemoryGB,
		CPUCores:      runtime.NumCPU(),
		APILevel:      fallbackAPILevel,
	}

	if gb, ok := totalMemoryGB(); ok {
		s.TotalMemoryGB = gb
	} else {
		log.Warnf("device: total memory unavailable, assuming %.1f GB", fallbackMemoryGB)
	}
	if level, ok := platformLevel(); ok {
		s.APILevel = level
	}
	s.SupportsModernGraphics = modernGraphics()
	s.LowPowerMode = lowPowerMode()

	log.Debugw("device signals",
		"memory_gb", s.TotalMemoryGB,
		"cores", s.CPUCores,
		"api_level", s.APILevel,
		"modern_graphics", s.SupportsModernGraphics,
		"low_power", s.LowPowerMode)
	return s
}

// Detect probes the host, applies overrides and returns the resulting
// profile together with the signals it was derived from.
func Detect(o Overrides) (Profile, Signals) {
	s := o.Apply(Probe())
	tier := Classify(s)
	log.Infof("device: detected %s performance tier", tier)
	return DeriveProfile(tier), s
}
