package cache

import (
	"sync"
	"time"
)

// Coalescer merges bursts of triggers into a single deferred call.
//
// The first Trigger arms a timer for the window; triggers arriving while the
// timer is armed are absorbed. When the window elapses fn runs once, on its own
// goroutine, and the next Trigger arms a new window. A steady stream of triggers
// therefore produces at most one call per window.
type Coalescer struct {
	timer  *time.Timer
	fn     func()
	window time.Duration
	gen    uint64
	mu     sync.Mutex
	armed  bool
	closed bool
}

// NewCoalescer creates a Coalescer that runs fn at the trailing edge of each
// window. A non-positive window runs fn synchronously on every Trigger.
func NewCoalescer(window time.Duration, fn func()) *Coalescer {
	return &Coalescer{fn: fn, window: window}
}

// Trigger schedules fn unless a call is already pending.
// It reports whether this call armed a new window.
func (c *Coalescer) Trigger() bool {
	c.mu.Lock()
	if c.closed || c.armed {
		c.mu.Unlock()
		return false
	}
	if c.window <= 0 {
		c.mu.Unlock()
		c.fn()
		return true
	}
	c.armed = true
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.window, func() { c.fire(gen) })
	c.mu.Unlock()
	return true
}

// Pending reports whether a call is scheduled.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// Cancel drops a pending call, if any. Later triggers schedule normally.
func (c *Coalescer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarm()
}

// Stop cancels a pending call and ignores all future triggers.
// Stop is idempotent.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarm()
	c.closed = true
}

func (c *Coalescer) fire(gen uint64) {
	c.mu.Lock()
	if !c.armed || c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.armed = false
	c.timer = nil
	c.mu.Unlock()

	c.fn()
}

// disarm must be called with the mutex held.
func (c *Coalescer) disarm() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.armed = false
}
