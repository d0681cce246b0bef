package snow

import "sync/atomic"

// Store holds the shared parameter set. Writers replace the whole snapshot
// atomically, so a reader never observes a half-applied change. Every write
// is clamped to a renderable state.
type Store struct {
	maxLayers int
	current   atomic.Pointer[Parameters]
}

// NewStore returns a store seeded with initial, clamped to maxLayers.
func NewStore(initial Parameters, maxLayers int) *Store {
	s := &Store{maxLayers: maxLayers}
	p := initial.Clamp(maxLayers)
	s.current.Store(&p)
	return s
}

// Snapshot returns the current parameter set by value.
func (s *Store) Snapshot() Parameters {
	return *s.current.Load()
}

// MaxLayers is the layer ceiling applied to every write.
func (s *Store) MaxLayers() int {
	return s.maxLayers
}

// Update applies fn to a copy of the current set and publishes the clamped
// result. Concurrent updates are serialized by retrying.
func (s *Store) Update(fn func(p *Parameters)) Parameters {
	for {
		old := s.current.Load()
		next := *old
		fn(&next)
		next = next.Clamp(s.maxLayers)
		if s.current.CompareAndSwap(old, &next) {
			return next
		}
	}
}

// Replace publishes p as a whole.
func (s *Store) Replace(p Parameters) Parameters {
	return s.Update(func(cur *Parameters) { *cur = p })
}

func (s *Store) SetLayers(n int) int {
	return s.Update(func(p *Parameters) { p.Layers = n }).Layers
}

func (s *Store) SetSpeed(v float64) {
	s.Update(func(p *Parameters) { p.Speed = v })
}

func (s *Store) SetDepth(v float64) {
	s.Update(func(p *Parameters) { p.Depth = v })
}

func (s *Store) SetWidth(v float64) {
	s.Update(func(p *Parameters) { p.Width = v })
}

func (s *Store) SetOpacity(v float64) {
	s.Update(func(p *Parameters) { p.Opacity = v })
}

func (s *Store) SetFlakeColor(c RGB) {
	s.Update(func(p *Parameters) { p.FlakeColor = c })
}

// ApplyPreset sets density, depth, spread and speed from pr. The preset
// layer count is capped by the store ceiling.
func (s *Store) ApplyPreset(pr Preset) Parameters {
	return s.Update(func(p *Parameters) {
		p.Layers = min(pr.Layers, s.maxLayers)
		p.Depth = pr.Depth
		p.Width = pr.Width
		p.Speed = pr.Speed
	})
}
