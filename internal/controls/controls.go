// Package controls maps user actions onto the parameter store and the render
// driver. Hosts translate their own key events into Actions.
package controls

import (
	"github.com/iburimskiy/snowfall/internal/driver"
	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/snow"
)

type Action int

const (
	None Action = iota
	TogglePause
	PresetLight
	PresetHeavy
	MoreLayers
	FewerLayers
	Faster
	Slower
	MoreOpaque
	LessOpaque
	PickColor
	Reload
	ToggleOverlay
	Quit
)

var actionNames = [...]string{
	None:          "none",
	TogglePause:   "toggle-pause",
	PresetLight:   "preset-light",
	PresetHeavy:   "preset-heavy",
	MoreLayers:    "more-layers",
	FewerLayers:   "fewer-layers",
	Faster:        "faster",
	Slower:        "slower",
	MoreOpaque:    "more-opaque",
	LessOpaque:    "less-opaque",
	PickColor:     "pick-color",
	Reload:        "reload",
	ToggleOverlay: "toggle-overlay",
	Quit:          "quit",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Steps sets how far one key press moves a parameter.
type Steps struct {
	Layers  int
	Speed   float64
	Opacity float64
}

// ForRune maps the shared single-character bindings.
func ForRune(r rune) Action {
	switch r {
	case ' ':
		return TogglePause
	case '1':
		return PresetLight
	case '2':
		return PresetHeavy
	case '[':
		return LessOpaque
	case ']':
		return MoreOpaque
	case 'c', 'C':
		return PickColor
	case 'r', 'R':
		return Reload
	case 'f', 'F':
		return ToggleOverlay
	case 'q', 'Q':
		return Quit
	}
	return None
}

// Apply performs a parameter action on the store. It reports false for
// actions the host must handle itself (pause, colour, reload, overlay,
// quit).
func Apply(s *snow.Store, a Action, st Steps) bool {
	switch a {
	case PresetLight:
		s.ApplyPreset(snow.LightSnow)
	case PresetHeavy:
		s.ApplyPreset(snow.HeavySnow)
	case MoreLayers:
		s.Update(func(p *snow.Parameters) { p.Layers += st.Layers })
	case FewerLayers:
		s.Update(func(p *snow.Parameters) { p.Layers -= st.Layers })
	case Faster:
		s.Update(func(p *snow.Parameters) { p.Speed += st.Speed })
	case Slower:
		s.Update(func(p *snow.Parameters) { p.Speed -= st.Speed })
	case MoreOpaque:
		s.Update(func(p *snow.Parameters) { p.Opacity += st.Opacity })
	case LessOpaque:
		s.Update(func(p *snow.Parameters) { p.Opacity -= st.Opacity })
	default:
		return false
	}
	p := s.Snapshot()
	log.Debugw("parameters changed", "action", a.String(),
		"layers", p.Layers, "speed", p.Speed, "opacity", p.Opacity)
	return true
}

// Pauser is the part of the driver a pause toggle needs.
type Pauser interface {
	Pause()
	Resume()
	State() driver.State
}

// Toggle flips the driver between active and paused and returns the new
// state.
func Toggle(p Pauser) driver.State {
	if p.State() == driver.StatePaused {
		p.Resume()
	} else {
		p.Pause()
	}
	return p.State()
}
