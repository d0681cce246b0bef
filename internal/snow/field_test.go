package snow

import (
	"context"
	"errors"
	"image"
	"testing"
)

func TestFieldMatchesEvaluate(t *testing.T) {
	p := testParams(90)
	p.Opacity = 0.5
	u := NewUniforms(64, 36, 7.5, p)

	dst := image.NewNRGBA(image.Rect(0, 0, 64, 36))
	if err := NewField(3).Render(context.Background(), dst, u); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			want := Evaluate(UV(x, y, 64, 36), 7.5, p).NRGBA()
			if got := dst.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d, %d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestFieldOffsetBounds(t *testing.T) {
	p := testParams(40)
	full := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	sub := full.SubImage(image.Rect(5, 5, 15, 15)).(*image.NRGBA)

	if err := NewField(0).Render(context.Background(), sub, NewUniforms(10, 10, 1, p)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := full.NRGBAAt(0, 0); got.A != 0 {
		t.Fatalf("pixel outside sub-image written: %+v", got)
	}
	want := Evaluate(UV(0, 0, 10, 10), 1, p).NRGBA()
	if got := full.NRGBAAt(5, 5); got != want {
		t.Fatalf("sub-image origin = %+v, want %+v", got, want)
	}
}

func TestFieldCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dst := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	if err := NewField(2).Render(ctx, dst, NewUniforms(8, 8, 0, testParams(10))); !errors.Is(err, context.Canceled) {
		t.Fatalf("Render on cancelled context = %v", err)
	}
}

func TestFieldEmpty(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if err := NewField(2).Render(context.Background(), dst, Uniforms{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestUniformsMap(t *testing.T) {
	p := testParams(400)
	u := NewUniforms(0, 0, 2, p)
	if u.Width != 1 || u.Height != 1 {
		t.Fatalf("zero surface not clamped: %+v", u)
	}
	m := u.Map()
	if got := m["Layers"]; got != MaxLayers {
		t.Fatalf("Layers uniform = %v, want %d", got, MaxLayers)
	}
	for _, name := range []string{"Resolution", "Time", "Speed", "Depth", "Spread", "Opacity", "FlakeColor"} {
		if _, ok := m[name]; !ok {
			t.Errorf("uniform %s missing", name)
		}
	}
}

func TestShaderSourceEmbedded(t *testing.T) {
	if len(ShaderSource) == 0 {
		t.Fatal("shader source not embedded")
	}
}
