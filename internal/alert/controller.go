// Package alert manages the budget-exceeded warning lifecycle: a two-state
// machine (hidden, shown) with a single auto-dismiss timer.
package alert

import (
	"sync"
	"time"
)

// Controller owns the warning banner state. At most one dismiss timer is
// pending at any time: arming cancels and replaces any prior timer. The
// generation counter makes an already-fired callback from a replaced timer
// a no-op.
type Controller struct {
	mu           sync.Mutex
	visible      bool
	timer        *time.Timer
	generation   uint64
	dismissAfter time.Duration
}

func New(dismissAfter time.Duration) *Controller {
	return &Controller{dismissAfter: dismissAfter}
}

// Arm shows the warning and (re)starts the auto-dismiss timer. Re-arming
// while shown restarts the countdown rather than stacking a second timer.
func (c *Controller) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.visible = true

	gen := c.generation
	c.timer = time.AfterFunc(c.dismissAfter, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			return
		}
		c.visible = false
		c.timer = nil
	})
}

// Dismiss hides the warning and clears any pending timer. Manual dismissal
// and timer expiry converge on the same hidden state.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.visible = false
}

func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// cancelLocked invalidates the outstanding timer, if any. Callers hold the
// lock.
func (c *Controller) cancelLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
