// Package ambience plays a procedural wind bed whose loudness follows the
// snow density.
package ambience

import (
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/faiface/beep"
)

const (
	// brown noise leak and makeup gain
	brownLeak = 1.02
	brownStep = 0.02
	brownGain = 3.5

	gustHz     = 0.07
	gustDepth  = 0.35
	gainSlew   = 0.0005
	channelLag = 0.15
)

// Wind is an endless stereo brown-noise streamer with slow gusts. Its gain
// can be changed from any goroutine and is slewed per sample to avoid
// clicks.
type Wind struct {
	rate  beep.SampleRate
	rng   *rand.Rand
	brown [2]float64
	phase float64
	gain  float64

	target atomic.Uint64 // float64 bits
}

// NewWind returns a silent streamer. Equal seeds give equal streams.
func NewWind(rate beep.SampleRate, seed uint64) *Wind {
	return &Wind{
		rate: rate,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetGain sets the target gain, clamped to [0, 1].
func (w *Wind) SetGain(g float64) {
	if !(g > 0) {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	w.target.Store(math.Float64bits(g))
}

// Gain returns the target gain.
func (w *Wind) Gain() float64 {
	return math.Float64frombits(w.target.Load())
}

func (w *Wind) Stream(samples [][2]float64) (int, bool) {
	target := w.Gain()
	step := 2 * math.Pi * gustHz / float64(w.rate)

	for i := range samples {
		w.gain += (target - w.gain) * gainSlew

		gust := 1 - gustDepth + gustDepth*0.5*(1+math.Sin(w.phase))
		w.phase += step
		if w.phase > 2*math.Pi {
			w.phase -= 2 * math.Pi
		}

		white := w.rng.Float64()*2 - 1
		w.brown[0] = (w.brown[0] + brownStep*white) / brownLeak
		// right channel trails the left for some width
		w.brown[1] += (w.brown[0] - w.brown[1]) * (1 - channelLag)

		amp := w.gain * gust * brownGain
		samples[i][0] = clampSample(w.brown[0] * amp)
		samples[i][1] = clampSample(w.brown[1] * amp)
	}
	return len(samples), true
}

func (w *Wind) Err() error { return nil }

func clampSample(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
