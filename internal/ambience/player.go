package ambience

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/iburimskiy/snowfall/internal/log"
)

const levelRingSize = 4096

// Player owns the speaker and the wind chain: wind -> tap -> ctrl.
type Player struct {
	wind   *Wind
	tap    *levelTap
	ctrl   *beep.Ctrl
	volume float64

	// speaker hooks; no-ops until Start
	lock   func()
	unlock func()
	clear  func()

	mu     sync.Mutex
	closed bool
}

func newPlayer(rate beep.SampleRate, volume float64, seed uint64) *Player {
	w := NewWind(rate, seed)
	t := newLevelTap(w, levelRingSize)
	return &Player{
		wind:   w,
		tap:    t,
		ctrl:   &beep.Ctrl{Streamer: t, Paused: false},
		volume: volume,
		lock:   func() {},
		unlock: func() {},
		clear:  func() {},
	}
}

// Start initializes the speaker and starts the wind at zero density.
func Start(sampleRate, bufferSize int, volume float64) (*Player, error) {
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, bufferSize); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}
	p := newPlayer(rate, volume, uint64(time.Now().UnixNano()))
	p.lock, p.unlock, p.clear = speaker.Lock, speaker.Unlock, speaker.Clear
	speaker.Play(p.ctrl)

	log.Infow("ambience started", "sample_rate", sampleRate, "volume", volume)
	return p, nil
}

// SetDensity scales the wind gain with layers relative to maxLayers.
func (p *Player) SetDensity(layers, maxLayers int) {
	if maxLayers <= 0 {
		p.wind.SetGain(0)
		return
	}
	p.mu.Lock()
	volume := p.volume
	p.mu.Unlock()
	p.wind.SetGain(volume * float64(layers) / float64(maxLayers))
}

// SetVolume changes the master volume. The next SetDensity applies it.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

// SetPaused silences the wind without stopping the speaker.
func (p *Player) SetPaused(paused bool) {
	p.lock()
	p.ctrl.Paused = paused
	p.unlock()
}

// Level is the recent output RMS in [0, 1].
func (p *Player) Level() float64 {
	return p.tap.rms()
}

// Close stops playback.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.lock()
	p.ctrl.Streamer = nil
	p.unlock()
	p.clear()
}
