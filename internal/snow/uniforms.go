package snow

// Uniforms is the single per-frame uniform block handed to a surface.
type Uniforms struct {
	Width, Height int
	Time          float64
	Params        Parameters
}

// NewUniforms builds the block for one frame. Zero sized surfaces are
// treated as 1×1.
func NewUniforms(width, height int, t float64, p Parameters) Uniforms {
	return Uniforms{
		Width:  max(width, 1),
		Height: max(height, 1),
		Time:   t,
		Params: p,
	}
}

// Map returns the block keyed by the uniform names of the Kage shader.
func (u Uniforms) Map() map[string]any {
	p := u.Params
	return map[string]any{
		"Resolution": []float32{float32(u.Width), float32(u.Height)},
		"Time":       float32(u.Time),
		"Layers":     min(p.Layers, MaxLayers),
		"Speed":      float32(p.Speed),
		"Depth":      float32(p.Depth),
		"Spread":     float32(p.Width),
		"Opacity":    float32(p.Opacity),
		"FlakeColor": []float32{float32(p.FlakeColor.R), float32(p.FlakeColor.G), float32(p.FlakeColor.B)},
	}
}
