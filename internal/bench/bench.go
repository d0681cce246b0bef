// Package bench measures the CPU cost of the snow field and fits a cost per
// layer model to it.
package bench

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/iburimskiy/snowfall/internal/snow"
)

// Sample is the cost of one rendered frame.
type Sample struct {
	Layers int
	Cost   time.Duration
}

// Surface is a headless driver.Surface that renders with the CPU field and
// records the cost of every frame.
type Surface struct {
	field   *snow.Field
	img     *image.NRGBA
	samples []Sample
	err     error
}

func NewSurface(workers int) *Surface {
	return &Surface{field: snow.NewField(workers)}
}

func (s *Surface) Configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bench surface %dx%d", width, height)
	}
	s.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	return nil
}

func (s *Surface) Resize(width, height int) {
	s.img = image.NewNRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
}

func (s *Surface) Frame(u snow.Uniforms) {
	if s.img == nil {
		return
	}
	start := time.Now()
	if err := s.field.Render(context.Background(), s.img, u); err != nil {
		s.err = err
		return
	}
	s.samples = append(s.samples, Sample{Layers: min(u.Params.Layers, snow.MaxLayers), Cost: time.Since(start)})
}

// Samples returns the recorded frames.
func (s *Surface) Samples() []Sample {
	return s.samples
}

// Image is the last rendered frame.
func (s *Surface) Image() *image.NRGBA {
	return s.img
}

// Err is the first render error, if any.
func (s *Surface) Err() error {
	return s.err
}

// Sweep renders frames frames at each layer count.
func Sweep(ctx context.Context, s *Surface, width, height int, base snow.Parameters, layers []int, frames int) ([]Sample, error) {
	if err := s.Configure(width, height); err != nil {
		return nil, err
	}
	start := time.Now()
	for _, n := range layers {
		p := base
		p.Layers = n
		for i := 0; i < frames; i++ {
			if err := ctx.Err(); err != nil {
				return s.samples, err
			}
			s.Frame(snow.NewUniforms(width, height, time.Since(start).Seconds(), p))
			if s.err != nil {
				return s.samples, s.err
			}
		}
	}
	return s.samples, nil
}

// Summary describes the frame costs at one layer count, in milliseconds.
type Summary struct {
	Layers int
	Frames int
	Mean   float64
	StdDev float64
	P95    float64
}

// Summarize groups samples by layer count, ordered by layers.
func Summarize(samples []Sample) []Summary {
	groups := map[int][]float64{}
	for _, s := range samples {
		groups[s.Layers] = append(groups[s.Layers], ms(s.Cost))
	}

	out := make([]Summary, 0, len(groups))
	for layers, costs := range groups {
		sort.Float64s(costs)
		sum := Summary{
			Layers: layers,
			Frames: len(costs),
			Mean:   stat.Mean(costs, nil),
			P95:    stat.Quantile(0.95, stat.Empirical, costs, nil),
		}
		if len(costs) > 1 {
			sum.StdDev = stat.StdDev(costs, nil)
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Layers < out[j].Layers })
	return out
}

// Model is the linear fit cost = Base + PerLayer·layers, in milliseconds.
type Model struct {
	Base     float64
	PerLayer float64
	RSquared float64
}

// Fit regresses frame cost on layer count. It needs at least two distinct
// layer counts.
func Fit(samples []Sample) (Model, error) {
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	distinct := map[int]bool{}
	for i, s := range samples {
		xs[i] = float64(s.Layers)
		ys[i] = ms(s.Cost)
		distinct[s.Layers] = true
	}
	if len(distinct) < 2 {
		return Model{}, fmt.Errorf("fit needs two distinct layer counts, have %d", len(distinct))
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Model{
		Base:     alpha,
		PerLayer: beta,
		RSquared: stat.RSquared(xs, ys, nil, alpha, beta),
	}, nil
}

// Predict returns the modelled cost of a frame with layers layers.
func (m Model) Predict(layers int) time.Duration {
	return time.Duration((m.Base + m.PerLayer*float64(layers)) * float64(time.Millisecond))
}

// Ceiling is the largest layer count whose modelled cost fits budget,
// within [0, snow.MaxLayers].
func (m Model) Ceiling(budget time.Duration) int {
	left := ms(budget) - m.Base
	if left < 0 {
		return 0
	}
	if m.PerLayer <= 0 {
		return snow.MaxLayers
	}
	return min(int(math.Floor(left/m.PerLayer)), snow.MaxLayers)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
