// Package quality adapts the snow layer count to sustain a target frame rate.
//
// The controller samples the achieved frame rate over fixed one second
// windows. It sheds layers only after several consecutive slow windows and
// adds them back in smaller steps after a single fast one.
package quality

import (
	"sync/atomic"
	"time"

	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/log"
)

const (
	TargetFPS       = 30
	UpgradeMargin   = 15
	SampleWindow    = 1000 * time.Millisecond
	LowFPSThreshold = 3
	ReductionStep   = 10
	IncreaseStep    = ReductionStep / 2

	initialFPS    = 60
	initialLayers = 50
	defaultMax    = 150
)

// Observer is notified when the controller picks a new layer count. It runs
// synchronously inside the frame callback and must neither block nor call
// back into the controller.
type Observer interface {
	LayersAdjusted(layers int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(layers int)

func (f ObserverFunc) LayersAdjusted(layers int) { f(layers) }

// Clock is the time source used to measure sampling windows.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// State is a copy of the controller internals.
type State struct {
	CurrentLayers     int
	MinLayers         int
	MaxLayers         int
	ConsecutiveLowFPS int
	FrameCount        int
	WindowStart       time.Time
}

// Controller is the adaptive quality feedback loop. All methods except
// CurrentFPS must be called from the frame context.
type Controller struct {
	clock    Clock
	observer Observer
	adaptive bool

	frameCount        int
	windowStart       time.Time
	consecutiveLowFPS int

	currentLayers int
	minLayers     int
	maxLayers     int

	currentFPS atomic.Int64
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

// WithObserver registers the adjustment observer.
func WithObserver(o Observer) Option {
	return func(ctrl *Controller) {
		ctrl.observer = o
	}
}

// WithAdaptive toggles layer adjustments. A non-adaptive controller still
// measures the frame rate.
func WithAdaptive(enabled bool) Option {
	return func(ctrl *Controller) {
		ctrl.adaptive = enabled
	}
}

// NewController returns a controller with layers 50 in the range [15, 150].
func NewController(options ...Option) *Controller {
	c := &Controller{
		clock:         systemClock{},
		adaptive:      true,
		currentLayers: initialLayers,
		minLayers:     device.MinLayers,
		maxLayers:     defaultMax,
	}
	for _, opt := range options {
		opt(c)
	}
	c.currentFPS.Store(initialFPS)
	c.windowStart = c.clock.Now()
	return c
}

// OnFrameRendered counts one rendered frame and closes the sampling window
// once it has lasted at least SampleWindow.
func (c *Controller) OnFrameRendered() {
	c.frameCount++

	now := c.clock.Now()
	elapsed := now.Sub(c.windowStart)
	if elapsed < SampleWindow {
		return
	}

	fps := int64(c.frameCount) * 1000 / elapsed.Milliseconds()
	c.currentFPS.Store(fps)
	c.evaluate(int(fps))

	c.frameCount = 0
	c.windowStart = now
}

func (c *Controller) evaluate(fps int) {
	switch {
	case fps < TargetFPS:
		c.consecutiveLowFPS++
		if c.consecutiveLowFPS >= LowFPSThreshold && c.currentLayers > c.minLayers {
			next := max(c.minLayers, c.currentLayers-ReductionStep)
			if !c.adaptive {
				return
			}
			log.Warnf("quality: low FPS detected (%d), reducing layers: %d -> %d", fps, c.currentLayers, next)
			c.adjust(next)
			c.consecutiveLowFPS = 0
		}
	case fps >= TargetFPS+UpgradeMargin && c.consecutiveLowFPS == 0:
		if c.currentLayers < c.maxLayers {
			next := min(c.maxLayers, c.currentLayers+IncreaseStep)
			if !c.adaptive {
				return
			}
			log.Infof("quality: good FPS (%d), increasing layers: %d -> %d", fps, c.currentLayers, next)
			c.adjust(next)
		}
	default:
		c.consecutiveLowFPS = 0
	}
}

func (c *Controller) adjust(layers int) {
	c.currentLayers = layers
	if c.observer != nil {
		c.observer.LayersAdjusted(layers)
	}
}

// SetLayerRange sets the bounds the controller works within and pulls the
// current layer count back inside them.
func (c *Controller) SetLayerRange(minLayers, maxLayers int) {
	if maxLayers < minLayers {
		maxLayers = minLayers
	}
	c.minLayers = minLayers
	c.maxLayers = maxLayers
	c.currentLayers = c.clamp(c.currentLayers)
}

// SetCurrentLayers records the layer count chosen outside the controller.
func (c *Controller) SetCurrentLayers(layers int) {
	c.currentLayers = c.clamp(layers)
}

// Reset starts a fresh sampling window. The current layer count is kept.
func (c *Controller) Reset() {
	c.frameCount = 0
	c.windowStart = c.clock.Now()
	c.consecutiveLowFPS = 0
}

// CurrentFPS returns the rate measured over the last closed window. Safe to
// call from any goroutine.
func (c *Controller) CurrentFPS() int {
	return int(c.currentFPS.Load())
}

// CurrentLayers returns the layer count the controller currently targets.
func (c *Controller) CurrentLayers() int {
	return c.currentLayers
}

// Adaptive reports whether the controller adjusts layers.
func (c *Controller) Adaptive() bool {
	return c.adaptive
}

func (c *Controller) State() State {
	return State{
		CurrentLayers:     c.currentLayers,
		MinLayers:         c.minLayers,
		MaxLayers:         c.maxLayers,
		ConsecutiveLowFPS: c.consecutiveLowFPS,
		FrameCount:        c.frameCount,
		WindowStart:       c.windowStart,
	}
}

func (c *Controller) clamp(layers int) int {
	if layers < c.minLayers {
		return c.minLayers
	}
	if layers > c.maxLayers {
		return c.maxLayers
	}
	return layers
}
