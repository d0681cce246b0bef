package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/snowfall/internal/snow"
)

// shaderSurface draws the snow field with the Kage shader. The target image
// is only set for the duration of a Draw call.
type shaderSurface struct {
	shader *ebiten.Shader
	target *ebiten.Image
}

func (s *shaderSurface) Configure(width, height int) error {
	sh, err := ebiten.NewShader(snow.ShaderSource)
	if err != nil {
		return fmt.Errorf("compiling snow shader: %w", err)
	}
	s.shader = sh
	return nil
}

// Resize is a no-op: the uniform block carries the size of every frame.
func (s *shaderSurface) Resize(width, height int) {}

func (s *shaderSurface) Frame(u snow.Uniforms) {
	if s.target == nil || s.shader == nil {
		return
	}
	// The screen is not cleared between frames, so each frame replaces it.
	op := &ebiten.DrawRectShaderOptions{
		Uniforms: u.Map(),
		Blend:    ebiten.BlendCopy,
	}
	s.target.DrawRectShader(u.Width, u.Height, s.shader, op)
}
