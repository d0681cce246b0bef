// Package driver schedules snow frames for a render surface and closes the
// loop between the frame cadence and the quality controller.
package driver

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/quality"
	"github.com/iburimskiy/snowfall/internal/snow"
)

// ErrSurfaceSetup wraps every surface configuration failure. It is fatal:
// there is no fallback surface.
var ErrSurfaceSetup = errors.New("surface setup failed")

// State is the driver run state.
type State int

const (
	StateActive State = iota
	StatePaused
)

func (s State) String() string {
	if s == StatePaused {
		return "paused"
	}
	return "active"
}

// Policy selects how frames are scheduled.
type Policy int

const (
	// PolicyContinuous renders on every display refresh.
	PolicyContinuous Policy = iota
	// PolicyOnDemand renders only on request, kept alive by a
	// self-rescheduling tick.
	PolicyOnDemand
)

func (p Policy) String() string {
	if p == PolicyOnDemand {
		return "on-demand"
	}
	return "continuous"
}

// Surface is implemented by platform hosts. Adapters upload the uniform
// block and draw; they hold no snow logic.
type Surface interface {
	Configure(width, height int) error
	Frame(u snow.Uniforms)
	Resize(width, height int)
}

// Host receives frame requests. RequestFrame must not block.
type Host interface {
	RequestFrame()
}

// HostFunc adapts a function to Host.
type HostFunc func()

func (f HostFunc) RequestFrame() { f() }

// Config wires a driver to its collaborators.
type Config struct {
	Profile  device.Profile
	LowPower bool // power-save signal sampled at startup
	Store    *snow.Store
	Surface  Surface
	Host     Host
	Clock    Clock // nil means the wall clock
}

// Driver is the render loop state machine. Frame, SurfaceReady and Resize
// are called by the host from its frame context; Pause, Resume and the
// accessors may be called from any goroutine.
type Driver struct {
	profile    device.Profile
	policy     Policy
	interval   time.Duration
	store      *snow.Store
	surface    Surface
	host       Host
	clock      Clock
	controller *quality.Controller
	log        *zap.SugaredLogger
	start      time.Time

	paused       atomic.Bool
	ready        atomic.Bool
	resetPending atomic.Bool

	// frame context only
	lastLayers int

	mu            sync.Mutex
	state         State
	width, height int
	generation    uint64
	timer         Timer
	closed        bool
	observers     []quality.Observer
}

// New builds a driver in the active state. The scheduling policy is fixed
// here from the profile and the startup power-save signal; an on-demand
// driver starts ticking immediately.
func New(cfg Config) (*Driver, error) {
	if cfg.Store == nil {
		return nil, errors.New("driver: nil parameter store")
	}
	if cfg.Surface == nil {
		return nil, errors.New("driver: nil surface")
	}
	if cfg.Host == nil {
		cfg.Host = HostFunc(func() {})
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	d := &Driver{
		profile:  cfg.Profile,
		policy:   PolicyOnDemand,
		interval: time.Second / time.Duration(cfg.Profile.TickRate()),
		store:    cfg.Store,
		surface:  cfg.Surface,
		host:     cfg.Host,
		clock:    cfg.Clock,
		log:      log.With("session", uuid.NewString()),
		start:    cfg.Clock.Now(),
		state:    StateActive,
	}
	if cfg.Profile.Continuous(cfg.LowPower) {
		d.policy = PolicyContinuous
	}

	d.controller = quality.NewController(
		quality.WithClock(cfg.Clock),
		quality.WithAdaptive(cfg.Profile.UseAdaptiveFPS),
		quality.WithObserver(quality.ObserverFunc(d.layersAdjusted)),
	)
	d.controller.SetLayerRange(device.MinLayers, cfg.Profile.MaxLayers)
	d.lastLayers = cfg.Store.Snapshot().Layers
	d.controller.SetCurrentLayers(d.lastLayers)

	d.log.Infow("render driver created",
		"tier", cfg.Profile.Tier.String(),
		"policy", d.policy.String(),
		"adaptive", cfg.Profile.UseAdaptiveFPS,
		"low_power", cfg.LowPower)

	if d.policy == PolicyOnDemand {
		d.mu.Lock()
		d.startTickLocked()
		d.mu.Unlock()
	}
	return d, nil
}

// SurfaceReady configures the surface at its initial size. Frames are
// ignored until it has succeeded.
func (d *Driver) SurfaceReady(width, height int) error {
	d.mu.Lock()
	d.width, d.height = width, height
	d.mu.Unlock()

	if err := d.surface.Configure(width, height); err != nil {
		d.log.Errorw("surface setup failed", "error", err)
		return fmt.Errorf("%w: %w", ErrSurfaceSetup, err)
	}
	d.ready.Store(true)
	return nil
}

// Resize records the new surface size and forwards it to the surface.
func (d *Driver) Resize(width, height int) {
	d.mu.Lock()
	changed := width != d.width || height != d.height
	d.width, d.height = width, height
	d.mu.Unlock()

	if changed {
		d.surface.Resize(width, height)
	}
}

// Frame renders one frame. It is a no-op while paused or before the
// surface is ready.
func (d *Driver) Frame() {
	if d.paused.Load() || !d.ready.Load() {
		return
	}
	if d.resetPending.Swap(false) {
		d.controller.Reset()
	}

	p := d.store.Snapshot()
	if p.Layers != d.lastLayers {
		d.lastLayers = p.Layers
		d.controller.SetCurrentLayers(p.Layers)
	}

	d.mu.Lock()
	w, h := d.width, d.height
	d.mu.Unlock()

	elapsed := d.clock.Now().Sub(d.start).Seconds()
	d.surface.Frame(snow.NewUniforms(w, h, elapsed, p))
	d.controller.OnFrameRendered()
}

// layersAdjusted runs inside Frame when the controller picks a new count.
func (d *Driver) layersAdjusted(layers int) {
	d.lastLayers = d.store.SetLayers(layers)

	d.mu.Lock()
	observers := append([]quality.Observer(nil), d.observers...)
	d.mu.Unlock()

	for _, o := range observers {
		o.LayersAdjusted(d.lastLayers)
	}
}

// Pause stops rendering. The frame callback stays registered but does
// nothing, and the on-demand tick stops rescheduling. Pausing twice is a
// no-op.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StatePaused {
		return
	}
	d.state = StatePaused
	d.paused.Store(true)
	d.stopTickLocked()
	d.log.Debugw("render paused")
}

// Resume restarts rendering with a fresh controller sampling window.
// Resuming an active driver is a no-op.
func (d *Driver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateActive {
		return
	}
	d.state = StateActive
	d.resetPending.Store(true)
	d.paused.Store(false)

	if d.policy == PolicyOnDemand {
		d.startTickLocked()
	} else {
		d.host.RequestFrame()
	}
	d.log.Debugw("render resumed")
}

// Close stops the on-demand tick for good.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.stopTickLocked()
}

// OnLayersAdjusted registers a hook called with every automatic layer
// change. Hooks run in the frame context and must not block.
func (d *Driver) OnLayersAdjusted(o quality.Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

// CurrentFPS is the rate measured over the last sampling window.
func (d *Driver) CurrentFPS() int {
	return d.controller.CurrentFPS()
}

func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) Policy() Policy {
	return d.policy
}

func (d *Driver) Profile() device.Profile {
	return d.profile
}

func (d *Driver) Store() *snow.Store {
	return d.store
}

// Controller exposes the quality controller. Only the frame context may
// call its mutating methods.
func (d *Driver) Controller() *quality.Controller {
	return d.controller
}

// TickInterval is the on-demand cadence.
func (d *Driver) TickInterval() time.Duration {
	return d.interval
}

func (d *Driver) startTickLocked() {
	if d.closed {
		return
	}
	d.stopTickLocked()
	d.tickLocked(d.generation)
	d.log.Debugw("manual render loop started", "fps", d.profile.TickRate())
}

func (d *Driver) stopTickLocked() {
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Driver) tick(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tickLocked(gen)
}

// tickLocked requests a frame and reschedules itself. A tick from an
// earlier generation dies silently, so a pause/resume cycle never leaves
// two loops running.
func (d *Driver) tickLocked(gen uint64) {
	if gen != d.generation || d.state != StateActive || d.closed {
		return
	}
	d.host.RequestFrame()
	d.timer = d.clock.AfterFunc(d.interval, func() { d.tick(gen) })
}
