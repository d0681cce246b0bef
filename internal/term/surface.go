// Package term renders the snow field into a terminal cell grid. Each cell
// shows two vertically stacked pixels with an upper half block, so the pixel
// grid is cols × 2·rows.
package term

import (
	"context"
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/snow"
)

const halfBlock = '▀'

// Canvas is the part of tcell.Screen the surface draws on.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
}

// Surface is a driver.Surface backed by the CPU field evaluator.
type Surface struct {
	canvas Canvas
	field  *snow.Field
	img    *image.NRGBA

	// Status, when set, is printed on the top row after every frame.
	Status func() string
}

func NewSurface(c Canvas, workers int) *Surface {
	return &Surface{canvas: c, field: snow.NewField(workers)}
}

// PixelSize converts a cell grid to the pixel size the driver works in.
func PixelSize(cols, rows int) (int, int) {
	return cols, rows * 2
}

func (s *Surface) Configure(width, height int) error {
	s.img = image.NewNRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	return nil
}

func (s *Surface) Resize(width, height int) {
	s.img = image.NewNRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
}

func (s *Surface) Frame(u snow.Uniforms) {
	if s.img == nil {
		return
	}
	if err := s.field.Render(context.Background(), s.img, u); err != nil {
		log.Warnw("terminal frame failed", "error", err)
		return
	}

	b := s.img.Bounds()
	for y := 0; y*2 < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			top := s.img.NRGBAAt(x, 2*y)
			bottom := top
			if 2*y+1 < b.Dy() {
				bottom = s.img.NRGBAAt(x, 2*y+1)
			}
			s.canvas.SetContent(x, y, halfBlock, nil, cellStyle(top, bottom))
		}
	}
	if s.Status != nil {
		drawText(s.canvas, 0, 0, s.Status())
	}
	s.canvas.Show()
}

// cellStyle composites both pixels over a black terminal background.
func cellStyle(top, bottom color.NRGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(overBlack(top)).Background(overBlack(bottom))
}

func overBlack(c color.NRGBA) tcell.Color {
	a := int32(c.A)
	return tcell.NewRGBColor(int32(c.R)*a/255, int32(c.G)*a/255, int32(c.B)*a/255)
}

func drawText(c Canvas, x, y int, text string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for _, r := range text {
		c.SetContent(x, y, r, nil, style)
		x++
	}
}
