// Package zoom holds the pinch-zoom state of the photo being previewed.
//
// State is a value type updated by pure functions, so it can be driven by any
// gesture source and tested without one. Controller wraps a State for callers
// that want a single mutable owner.
package zoom

import (
	"math"
	"sync"
)

const (
	MinScale = 1.0
	MaxScale = 5.0
)

// Point is a position in viewport coordinates.
type Point struct {
	X, Y float64
}

// State is the transform of the active photo. Baseline is the scale committed
// at the end of the previous gesture; new gestures multiply against it.
type State struct {
	Scale    float64
	Baseline float64
	Focal    Point
}

// Initial is the state shown when a photo becomes active.
func Initial() State {
	return State{Scale: MinScale, Baseline: MinScale}
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, MinScale), MaxScale)
}

// Update applies one gesture frame. incoming is the gesture's scale relative
// to its own start. Non-finite or non-positive input is ignored.
func (s State) Update(incoming float64, focal Point) State {
	if math.IsNaN(incoming) || math.IsInf(incoming, 0) || incoming <= 0 {
		return s
	}
	s.Scale = clamp(s.Baseline * incoming)
	s.Focal = focal
	return s
}

// End commits the current scale as the baseline for the next gesture.
func (s State) End() State {
	s.Baseline = s.Scale
	return s
}

// Magnification is the displayed zoom percentage.
func (s State) Magnification() int {
	return int(math.Round(s.Scale * 100))
}

// Zoomed reports whether the photo is magnified beyond its fitted size.
func (s State) Zoomed() bool {
	return s.Scale > MinScale
}

// Controller owns a State and counts resets. It is safe for concurrent use:
// gesture frames may arrive on a different goroutine than navigation.
type Controller struct {
	mu     sync.Mutex
	state  State
	resets int
	// OnChange, when set, receives every new state.
	OnChange func(State)
}

// NewController returns a controller at the initial state.
func NewController() *Controller {
	return &Controller{state: Initial()}
}

func (c *Controller) set(s State) State {
	c.state = s
	cb := c.OnChange
	c.mu.Unlock()
	if cb != nil {
		cb(s)
	}
	return s
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnGestureUpdate applies a pinch frame.
func (c *Controller) OnGestureUpdate(incoming float64, focal Point) State {
	c.mu.Lock()
	return c.set(c.state.Update(incoming, focal))
}

// OnGestureEnd commits the gesture.
func (c *Controller) OnGestureEnd() State {
	c.mu.Lock()
	return c.set(c.state.End())
}

// OnActivePhotoChanged resets scale and baseline to 1.
func (c *Controller) OnActivePhotoChanged() State {
	c.mu.Lock()
	c.resets++
	return c.set(Initial())
}

// Resets returns how many times the active photo changed.
func (c *Controller) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// Magnification is the displayed zoom percentage of the current state.
func (c *Controller) Magnification() int {
	return c.State().Magnification()
}
