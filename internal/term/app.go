package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/snowfall/internal/config"
	"github.com/iburimskiy/snowfall/internal/controls"
	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/driver"
	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/snow"
)

// refreshRate stands in for the display refresh of a continuous terminal run.
const refreshRate = 60

type Options struct {
	Profile  device.Profile
	LowPower bool
	Store    *snow.Store
	Workers  int
	Reload   func() (*config.Config, error)
}

// App runs the driver against a tcell screen.
type App struct {
	screen  tcell.Screen
	surface *Surface
	driver  *driver.Driver
	store   *snow.Store
	reload  func() (*config.Config, error)
	steps   controls.Steps
	frames  chan struct{}
	overlay bool
	note    string
}

func New(screen tcell.Screen, opts Options) (*App, error) {
	a := &App{
		screen:  screen,
		surface: NewSurface(screen, opts.Workers),
		store:   opts.Store,
		reload:  opts.Reload,
		steps: controls.Steps{
			Layers:  config.LayerStep,
			Speed:   config.SpeedStep,
			Opacity: config.OpacityStep,
		},
		frames:  make(chan struct{}, 1),
		overlay: true,
	}
	a.surface.Status = a.status

	d, err := driver.New(driver.Config{
		Profile:  opts.Profile,
		LowPower: opts.LowPower,
		Store:    opts.Store,
		Surface:  a.surface,
		Host:     a,
	})
	if err != nil {
		return nil, err
	}
	a.driver = d
	return a, nil
}

// RequestFrame queues one frame. Requests coalesce while one is pending.
func (a *App) RequestFrame() {
	select {
	case a.frames <- struct{}{}:
	default:
	}
}

// Run renders until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.driver.Close()

	if err := a.driver.SurfaceReady(PixelSize(a.screen.Size())); err != nil {
		return err
	}

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	var refresh <-chan time.Time
	if a.driver.Policy() == driver.PolicyContinuous {
		t := time.NewTicker(time.Second / refreshRate)
		defer t.Stop()
		refresh = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !a.handleEvent(ev) {
				return nil
			}
		case <-a.frames:
			a.driver.Frame()
		case <-refresh:
			a.driver.Frame()
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.perform(actionForKey(ev.Key(), ev.Rune()))
	case *tcell.EventResize:
		a.screen.Sync()
		a.driver.Resize(PixelSize(a.screen.Size()))
		a.RequestFrame()
	}
	return true
}

func (a *App) perform(act controls.Action) bool {
	switch act {
	case controls.Quit:
		return false
	case controls.TogglePause:
		controls.Toggle(a.driver)
	case controls.ToggleOverlay:
		a.overlay = !a.overlay
	case controls.Reload:
		a.reloadConfig()
	case controls.PickColor:
		a.note = "colour picker needs the desktop host"
	default:
		controls.Apply(a.store, act, a.steps)
	}
	a.RequestFrame()
	return true
}

func (a *App) reloadConfig() {
	if a.reload == nil {
		return
	}
	cfg, err := a.reload()
	if err != nil {
		log.Warnw("config reload failed", "error", err)
		a.note = err.Error()
		return
	}
	a.store.Replace(cfg.Parameters(a.driver.Profile()))
	a.note = "config reloaded"
}

func (a *App) status() string {
	if !a.overlay {
		return ""
	}
	p := a.store.Snapshot()
	s := fmt.Sprintf(" %d fps | layers %d/%d | %s %s ",
		a.driver.CurrentFPS(), p.Layers, a.store.MaxLayers(),
		a.driver.Profile().Tier, a.driver.Policy())
	if a.note != "" {
		s += "| " + a.note + " "
	}
	return s
}

func actionForKey(k tcell.Key, r rune) controls.Action {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return controls.Quit
	case tcell.KeyUp:
		return controls.MoreLayers
	case tcell.KeyDown:
		return controls.FewerLayers
	case tcell.KeyRight:
		return controls.Faster
	case tcell.KeyLeft:
		return controls.Slower
	case tcell.KeyRune:
		return controls.ForRune(r)
	}
	return controls.None
}
