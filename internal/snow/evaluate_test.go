package snow

import (
	"math"
	"testing"

	"github.com/iburimskiy/snowfall/internal/device"
)

func testParams(layers int) Parameters {
	p := DefaultParameters(device.DeriveProfile(device.TierHigh))
	p.Layers = layers
	return p
}

func sampleCoords() []Vec2 {
	var out []Vec2
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			out = append(out, UV(x*40, y*40, 640, 360))
		}
	}
	return out
}

func TestZeroLayersIsPureWhite(t *testing.T) {
	p := testParams(0)
	p.Opacity = 0.7
	for _, uv := range sampleCoords() {
		for _, tm := range []float64{0, 1.5, 1e4} {
			if k := Intensity(uv, tm, p); k != 0 {
				t.Fatalf("Intensity(%v, %v) = %v, want exactly 0", uv, tm, k)
			}
			got := Evaluate(uv, tm, p)
			if got != (RGBA{R: 1, G: 1, B: 1, A: 0.7}) {
				t.Fatalf("Evaluate(%v, %v) = %+v, want white", uv, tm, got)
			}
		}
	}
}

func TestIntensityAlwaysInRange(t *testing.T) {
	tests := []struct {
		name   string
		layers int
		depth  float64
		width  float64
	}{
		{"light", 50, 0.5, 0.3},
		{"heavy", 150, 0.1, 0.8},
		{"cap", 250, 0.5, 0.3},
		{"beyond cap", 10000, 0.5, 0.3},
		{"negative depth", 80, -0.5, 2},
		{"flat", 120, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(tt.layers)
			p.Depth = tt.depth
			p.Width = tt.width
			for _, uv := range sampleCoords() {
				for _, tm := range []float64{0, 3.25, 777} {
					k := Intensity(uv, tm, p)
					if math.IsNaN(k) || k < 0 || k > 1 {
						t.Fatalf("Intensity(%v, %v) = %v", uv, tm, k)
					}
				}
			}
		})
	}
}

func TestLayersAreCapped(t *testing.T) {
	capped := testParams(MaxLayers)
	over := testParams(MaxLayers * 4)
	for _, uv := range sampleCoords() {
		if a, b := Intensity(uv, 2, capped), Intensity(uv, 2, over); a != b {
			t.Fatalf("at %v: %v with cap, %v beyond cap", uv, a, b)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	p := testParams(120)
	p.FlakeColor = RGB{R: 0.2, G: 0.4, B: 0.9}
	for _, uv := range sampleCoords() {
		first := Evaluate(uv, 12.5, p)
		for i := 0; i < 3; i++ {
			again := Evaluate(uv, 12.5, p)
			if !closeRGBA(first, again, 1e-4) {
				t.Fatalf("Evaluate(%v) not repeatable: %+v vs %+v", uv, first, again)
			}
		}
	}
}

func TestSnowProducesCoverage(t *testing.T) {
	p := testParams(150)
	covered := 0
	for y := 0; y < 90; y++ {
		for x := 0; x < 160; x++ {
			if Intensity(UV(x, y, 160, 90), 4, p) > 0 {
				covered++
			}
		}
	}
	if covered == 0 {
		t.Fatal("150 layers produced no snow at all")
	}
}

func TestMixTowardFlakeColor(t *testing.T) {
	p := testParams(150)
	p.FlakeColor = RGB{}
	for y := 0; y < 90; y++ {
		for x := 0; x < 160; x++ {
			uv := UV(x, y, 160, 90)
			k := Intensity(uv, 4, p)
			c := Evaluate(uv, 4, p)
			if want := 1 - k; math.Abs(c.R-want) > 1e-12 || c.R != c.G || c.G != c.B {
				t.Fatalf("at %v: colour %+v for intensity %v", uv, c, k)
			}
		}
	}
}

func TestUV(t *testing.T) {
	tests := []struct {
		x, y, w, h int
		want       Vec2
	}{
		{0, 99, 200, 100, Vec2{X: 0.0025, Y: 0.0025}},
		{199, 0, 200, 100, Vec2{X: 0.9975, Y: 0.4975}},
		{0, 0, 0, 0, Vec2{X: 0.5, Y: 0.5}},
	}
	for _, tt := range tests {
		got := UV(tt.x, tt.y, tt.w, tt.h)
		if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
			t.Errorf("UV(%d, %d, %d, %d) = %+v, want %+v", tt.x, tt.y, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestSmoothstepReversedEdges(t *testing.T) {
	if got := smoothstep(0.1, -0.1, -1); got != 1 {
		t.Errorf("inside = %v, want 1", got)
	}
	if got := smoothstep(0.1, -0.1, 1); got != 0 {
		t.Errorf("outside = %v, want 0", got)
	}
	if got := smoothstep(0.1, -0.1, 0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("midpoint = %v, want 0.5", got)
	}
}

func TestCellHashRange(t *testing.T) {
	for cx := -20.0; cx <= 20; cx++ {
		for cy := -20.0; cy <= 20; cy++ {
			rx, ry := cellHash(cx, cy, layerConstant+3)
			for _, v := range []float64{rx, ry} {
				if !math.IsNaN(v) && (v < 0 || v >= 1) {
					t.Fatalf("cellHash(%v, %v) = %v outside [0, 1)", cx, cy, v)
				}
			}
		}
	}
}

func closeRGBA(a, b RGBA, eps float64) bool {
	return math.Abs(a.R-b.R) <= eps && math.Abs(a.G-b.G) <= eps &&
		math.Abs(a.B-b.B) <= eps && math.Abs(a.A-b.A) <= eps
}
