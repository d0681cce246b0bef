package bench

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"golang.org/x/image/draw"

	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/driver"
	"github.com/iburimskiy/snowfall/internal/quality"
	"github.com/iburimskiy/snowfall/internal/snow"
)

// Adjustment is one automatic layer change seen during a run.
type Adjustment struct {
	At     time.Duration
	Layers int
}

// Run is the result of driving the field at full speed for a while.
type Run struct {
	Frames      int
	FinalLayers int
	FinalFPS    int
	Adjustments []Adjustment
}

// Converge renders back to back through a driver for duration, letting the
// quality controller settle on a layer count for this machine.
func Converge(ctx context.Context, s *Surface, profile device.Profile, p snow.Parameters, width, height int, duration time.Duration) (Run, error) {
	store := snow.NewStore(p, profile.MaxLayers)
	d, err := driver.New(driver.Config{
		Profile: profile,
		Store:   store,
		Surface: s,
	})
	if err != nil {
		return Run{}, err
	}
	defer d.Close()

	var run Run
	start := time.Now()
	d.OnLayersAdjusted(quality.ObserverFunc(func(layers int) {
		run.Adjustments = append(run.Adjustments, Adjustment{At: time.Since(start), Layers: layers})
	}))

	if err := d.SurfaceReady(width, height); err != nil {
		return Run{}, err
	}

	deadline := start.Add(duration)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		d.Frame()
		if s.Err() != nil {
			return run, s.Err()
		}
		run.Frames++
	}

	run.FinalLayers = store.Snapshot().Layers
	run.FinalFPS = d.CurrentFPS()
	return run, nil
}

// WritePNG writes src upscaled by scale as a PNG.
func WritePNG(w io.Writer, src image.Image, scale int) error {
	if scale < 1 {
		return fmt.Errorf("scale %d", scale)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return png.Encode(w, dst)
}
