package snow

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Field renders whole frames on the CPU. Rows are split into bands that are
// evaluated concurrently; the frame call itself returns only when every band
// is done, so frames never overlap.
type Field struct {
	workers int
}

// NewField returns a renderer using up to workers goroutines per frame.
// workers <= 0 means one per CPU.
func NewField(workers int) *Field {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Field{workers: workers}
}

// Render evaluates every pixel of dst for the given uniforms. The bounds of
// dst define the resolution; u supplies time and parameters.
func (f *Field) Render(ctx context.Context, dst *image.NRGBA, u Uniforms) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	bands := min(f.workers, h)
	rowsPerBand := (h + bands - 1) / bands

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for y0 := 0; y0 < h; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, h)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				off := dst.PixOffset(b.Min.X, b.Min.Y+y)
				for x := 0; x < w; x++ {
					c := Evaluate(UV(x, y, w, h), u.Time, u.Params).NRGBA()
					dst.Pix[off+0] = c.R
					dst.Pix[off+1] = c.G
					dst.Pix[off+2] = c.B
					dst.Pix[off+3] = c.A
					off += 4
				}
			}
			return nil
		})
	}
	return g.Wait()
}
