// Package debounce coalesces bursts of input into a single evaluation.
//
// A Controller keeps at most one pending timer. Every OnInput cancels the
// pending timer and schedules a new one; when the quiet window elapses the
// evaluate callback runs once with the latest text.
package debounce

import (
	"sync"
	"time"

	"github.com/bastiangx/destserve/internal/utils"
	"github.com/charmbracelet/log"
)

// DefaultWindow is the quiet interval used when none is given.
const DefaultWindow = 300 * time.Millisecond

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc satisfies it through
// SystemAfterFunc; tests pass a fake clock.
type AfterFunc func(d time.Duration, f func()) Timer

// SystemAfterFunc schedules on the runtime timer.
func SystemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Controller is safe for concurrent use. Callbacks run without the internal
// lock held, so they may call back into the controller.
type Controller struct {
	mu        sync.Mutex
	window    time.Duration
	minLen    int
	evaluate  func(text string)
	clear     func()
	afterFunc AfterFunc

	timer   Timer
	gen     uint64
	latest  string
	stopped bool
	fired   int
}

// Option configures a Controller.
type Option func(*Controller)

// WithMinLen sets the rune length below which input is not scheduled.
func WithMinLen(n int) Option {
	return func(c *Controller) {
		c.minLen = n
	}
}

// WithClear sets the callback run when short input clears the suggestions.
func WithClear(fn func()) Option {
	return func(c *Controller) {
		c.clear = fn
	}
}

// WithAfterFunc replaces the timer primitive.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.afterFunc = fn
		}
	}
}

// New creates a controller that calls evaluate after window of quiet.
// A non-positive window uses DefaultWindow.
func New(window time.Duration, evaluate func(text string), opts ...Option) *Controller {
	if window <= 0 {
		window = DefaultWindow
	}
	c := &Controller{
		window:    window,
		minLen:    2,
		evaluate:  evaluate,
		afterFunc: SystemAfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.minLen < 1 {
		c.minLen = 1
	}
	return c
}

// OnInput records text and restarts the quiet window. It reports whether an
// evaluation is now pending. Text shorter than the minimum length cancels
// any pending evaluation and runs the clear callback instead.
func (c *Controller) OnInput(text string) bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}

	c.latest = text
	c.cancelLocked()

	if !utils.IsSearchable(text, c.minLen) {
		onClear := c.clear
		c.mu.Unlock()
		if onClear != nil {
			onClear()
		}
		return false
	}

	gen := c.gen
	c.timer = c.afterFunc(c.window, func() { c.fire(gen) })
	c.mu.Unlock()
	return true
}

// fire runs the evaluation scheduled under gen unless it was superseded.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.stopped || gen != c.gen || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.gen++
	c.fired++
	text := c.latest
	evaluate := c.evaluate
	c.mu.Unlock()

	if evaluate != nil {
		evaluate(text)
	}
}

// cancelLocked stops the pending timer. A timer that already started firing
// sees the bumped generation and returns without evaluating.
func (c *Controller) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

// Stop cancels the pending evaluation. No evaluation starts after Stop
// returns, and later input is ignored.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.cancelLocked()
	c.stopped = true
	log.Debugf("Debounce stopped after %d evaluations", c.fired)
}

// Pending reports whether an evaluation is scheduled.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Latest returns the most recent input.
func (c *Controller) Latest() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Window returns the quiet interval.
func (c *Controller) Window() time.Duration {
	return c.window
}
