package term

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/snowfall/internal/controls"
	"github.com/iburimskiy/snowfall/internal/snow"
)

type cell struct {
	r     rune
	style tcell.Style
}

type fakeCanvas struct {
	cells map[[2]int]cell
	shows int
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{cells: map[[2]int]cell{}}
}

func (c *fakeCanvas) SetContent(x, y int, primary rune, _ []rune, style tcell.Style) {
	c.cells[[2]int{x, y}] = cell{primary, style}
}

func (c *fakeCanvas) Show() { c.shows++ }

func TestSurfaceFillsHalfBlocks(t *testing.T) {
	canvas := newFakeCanvas()
	s := NewSurface(canvas, 2)
	w, h := PixelSize(8, 3)
	if w != 8 || h != 6 {
		t.Fatalf("PixelSize = %dx%d", w, h)
	}
	if err := s.Configure(w, h); err != nil {
		t.Fatal(err)
	}

	p := snow.Parameters{Layers: 20, Speed: 0.5, Depth: 0.5, Width: 0.3, Opacity: 1, FlakeColor: snow.DefaultFlakeColor}
	s.Frame(snow.NewUniforms(w, h, 3, p))

	if len(canvas.cells) != 8*3 || canvas.shows != 1 {
		t.Fatalf("cells = %d, shows = %d", len(canvas.cells), canvas.shows)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 8; x++ {
			top := snow.Evaluate(snow.UV(x, 2*y, w, h), 3, p).NRGBA()
			bottom := snow.Evaluate(snow.UV(x, 2*y+1, w, h), 3, p).NRGBA()
			got := canvas.cells[[2]int{x, y}]
			if got.r != halfBlock || got.style != cellStyle(top, bottom) {
				t.Fatalf("cell (%d, %d) = %+v", x, y, got)
			}
		}
	}
}

func TestSurfaceStatusRow(t *testing.T) {
	canvas := newFakeCanvas()
	s := NewSurface(canvas, 1)
	s.Status = func() string { return "hi" }
	s.Configure(4, 4)
	s.Frame(snow.NewUniforms(4, 4, 0, snow.Parameters{Opacity: 1}))

	if canvas.cells[[2]int{0, 0}].r != 'h' || canvas.cells[[2]int{1, 0}].r != 'i' {
		t.Fatal("status not drawn on the top row")
	}
	if canvas.cells[[2]int{2, 0}].r != halfBlock {
		t.Fatal("status overwrote cells past its end")
	}
}

func TestSurfaceOddHeight(t *testing.T) {
	canvas := newFakeCanvas()
	s := NewSurface(canvas, 1)
	s.Configure(2, 3)
	s.Frame(snow.NewUniforms(2, 3, 0, snow.Parameters{Opacity: 1}))
	if len(canvas.cells) != 4 {
		t.Fatalf("cells = %d, want 4", len(canvas.cells))
	}
}

func TestFrameBeforeConfigure(t *testing.T) {
	canvas := newFakeCanvas()
	NewSurface(canvas, 1).Frame(snow.NewUniforms(2, 2, 0, snow.Parameters{}))
	if canvas.shows != 0 {
		t.Fatal("unconfigured surface drew")
	}
}

func TestOverBlack(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if got := overBlack(white); got != tcell.NewRGBColor(255, 255, 255) {
		t.Errorf("opaque white = %v", got)
	}
	half := color.NRGBA{R: 200, G: 100, B: 50, A: 128}
	if got := overBlack(half); got != tcell.NewRGBColor(100, 50, 25) {
		t.Errorf("half alpha = %v", got)
	}
	if got := overBlack(color.NRGBA{R: 255, A: 0}); got != tcell.NewRGBColor(0, 0, 0) {
		t.Errorf("transparent = %v", got)
	}
}

func TestActionForKey(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want controls.Action
	}{
		{tcell.KeyEscape, 0, controls.Quit},
		{tcell.KeyCtrlC, 0, controls.Quit},
		{tcell.KeyUp, 0, controls.MoreLayers},
		{tcell.KeyDown, 0, controls.FewerLayers},
		{tcell.KeyRight, 0, controls.Faster},
		{tcell.KeyLeft, 0, controls.Slower},
		{tcell.KeyRune, ' ', controls.TogglePause},
		{tcell.KeyRune, '2', controls.PresetHeavy},
		{tcell.KeyEnter, 0, controls.None},
	}
	for _, tt := range tests {
		if got := actionForKey(tt.key, tt.r); got != tt.want {
			t.Errorf("actionForKey(%v, %q) = %s, want %s", tt.key, tt.r, got, tt.want)
		}
	}
}
