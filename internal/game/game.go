// Package game hosts the snow field in an ebiten window.
package game

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/snowfall/internal/ambience"
	"github.com/iburimskiy/snowfall/internal/config"
	"github.com/iburimskiy/snowfall/internal/controls"
	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/driver"
	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/snow"
)

var bindings = map[ebiten.Key]controls.Action{
	ebiten.KeySpace:        controls.TogglePause,
	ebiten.KeyDigit1:       controls.PresetLight,
	ebiten.KeyDigit2:       controls.PresetHeavy,
	ebiten.KeyArrowUp:      controls.MoreLayers,
	ebiten.KeyArrowDown:    controls.FewerLayers,
	ebiten.KeyArrowRight:   controls.Faster,
	ebiten.KeyArrowLeft:    controls.Slower,
	ebiten.KeyBracketRight: controls.MoreOpaque,
	ebiten.KeyBracketLeft:  controls.LessOpaque,
	ebiten.KeyC:            controls.PickColor,
	ebiten.KeyR:            controls.Reload,
	ebiten.KeyF:            controls.ToggleOverlay,
	ebiten.KeyEscape:       controls.Quit,
	ebiten.KeyQ:            controls.Quit,
}

// Options wires a Game.
type Options struct {
	Profile  device.Profile
	LowPower bool
	Store    *snow.Store
	Audio    *ambience.Player // optional
	Reload   func() (*config.Config, error)
}

// Game implements ebiten.Game and driver.Host.
type Game struct {
	driver  *driver.Driver
	store   *snow.Store
	surface *shaderSurface
	audio   *ambience.Player
	reload  func() (*config.Config, error)
	steps   controls.Steps
	started time.Time

	requested atomic.Bool
	picking   atomic.Bool

	// input edge detection
	prevKey map[ebiten.Key]bool

	// state
	configured  bool
	overlay     bool
	userPaused  bool
	focusPaused bool
	fatal       error

	errMu   sync.Mutex
	lastErr error
}

func New(opts Options) (*Game, error) {
	g := &Game{
		store:   opts.Store,
		surface: &shaderSurface{},
		audio:   opts.Audio,
		reload:  opts.Reload,
		steps: controls.Steps{
			Layers:  config.LayerStep,
			Speed:   config.SpeedStep,
			Opacity: config.OpacityStep,
		},
		started: time.Now(),
		prevKey: map[ebiten.Key]bool{},
	}

	d, err := driver.New(driver.Config{
		Profile:  opts.Profile,
		LowPower: opts.LowPower,
		Store:    opts.Store,
		Surface:  g.surface,
		Host:     g,
	})
	if err != nil {
		return nil, err
	}
	g.driver = d
	g.syncAudio()
	return g, nil
}

// Driver exposes the render driver.
func (g *Game) Driver() *driver.Driver {
	return g.driver
}

// RequestFrame marks the next Draw as a frame to render.
func (g *Game) RequestFrame() {
	g.requested.Store(true)
}

func (g *Game) Update() error {
	if g.fatal != nil {
		return g.fatal
	}

	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	g.handleFocus()

	for k, a := range bindings {
		if !justPressed(k) {
			continue
		}
		if err := g.perform(a); err != nil {
			return err
		}
	}
	g.syncAudio()
	return nil
}

func (g *Game) perform(a controls.Action) error {
	switch a {
	case controls.Quit:
		return ebiten.Termination
	case controls.TogglePause:
		g.userPaused = controls.Toggle(g.driver) == driver.StatePaused
		g.pauseAudio(g.userPaused)
	case controls.PickColor:
		go g.pickColor()
	case controls.Reload:
		g.reloadConfig()
	case controls.ToggleOverlay:
		g.overlay = !g.overlay
		g.RequestFrame()
	default:
		if controls.Apply(g.store, a, g.steps) {
			g.RequestFrame()
		}
	}
	return nil
}

// handleFocus pauses while the window is in the background and resumes on
// return unless the user paused explicitly.
func (g *Game) handleFocus() {
	focused := ebiten.IsFocused()
	switch {
	case !focused && !g.focusPaused && !g.userPaused:
		g.focusPaused = true
		g.driver.Pause()
		g.pauseAudio(true)
		log.Debugw("window lost focus, paused")
	case focused && g.focusPaused:
		g.focusPaused = false
		g.driver.Resume()
		g.pauseAudio(false)
		log.Debugw("window focused, resumed")
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.driver.Policy() == driver.PolicyOnDemand && !g.requested.Swap(false) {
		return
	}
	if g.driver.State() != driver.StateActive {
		return
	}

	g.surface.target = screen
	g.driver.Frame()
	g.surface.target = nil

	if g.overlay {
		ebitenutil.DebugPrintAt(screen, g.status(), config.OverlayX, config.OverlayY)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth, 1), max(outsideHeight, 1)
	if !g.configured {
		g.configured = true
		if err := g.driver.SurfaceReady(w, h); err != nil {
			g.fatal = err
		}
		return w, h
	}
	g.driver.Resize(w, h)
	return w, h
}

// Close stops the driver and the audio.
func (g *Game) Close() {
	g.driver.Close()
	if g.audio != nil {
		g.audio.Close()
	}
}

func (g *Game) status() string {
	p := g.store.Snapshot()
	prof := g.driver.Profile()
	s := fmt.Sprintf("%d fps (%.0f) | layers %d/%d | %s %s | %s",
		g.driver.CurrentFPS(), ebiten.ActualFPS(),
		p.Layers, g.store.MaxLayers(),
		prof.Tier, g.driver.Policy(),
		formatDuration(time.Since(g.started)))
	if g.audio != nil {
		s += " | wind " + meter(g.audio.Level()*4, 10)
	}
	if err := g.err(); err != nil {
		s += " | Error: " + err.Error()
	}
	return s
}

func (g *Game) pickColor() {
	if !g.picking.CompareAndSwap(false, true) {
		return
	}
	defer g.picking.Store(false)

	cur := g.store.Snapshot().FlakeColor
	c, err := zenity.SelectColor(
		zenity.Title("Flake colour"),
		zenity.Color(cur.Color()),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return
		}
		log.Warnw("colour picker failed", "error", err)
		g.setErr(err)
		return
	}

	picked := snow.FromColor(c)
	g.store.SetFlakeColor(picked)
	g.RequestFrame()
	log.Infow("flake colour changed", "color", picked.Hex())
}

func (g *Game) reloadConfig() {
	if g.reload == nil {
		return
	}
	cfg, err := g.reload()
	if err != nil {
		log.Warnw("config reload failed", "error", err)
		g.setErr(err)
		return
	}
	g.store.Replace(cfg.Parameters(g.driver.Profile()))
	if g.audio != nil {
		g.audio.SetVolume(cfg.Audio.Volume)
	}
	g.setErr(nil)
	g.RequestFrame()
	log.Infow("config reloaded")
}

func (g *Game) syncAudio() {
	if g.audio == nil {
		return
	}
	g.audio.SetDensity(g.store.Snapshot().Layers, g.store.MaxLayers())
}

func (g *Game) pauseAudio(paused bool) {
	if g.audio != nil {
		g.audio.SetPaused(paused)
	}
}

func (g *Game) setErr(err error) {
	g.errMu.Lock()
	g.lastErr = err
	g.errMu.Unlock()
}

func (g *Game) err() error {
	g.errMu.Lock()
	defer g.errMu.Unlock()
	return g.lastErr
}
