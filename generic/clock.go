package generic

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// CLOCK - Authoritative simulation time
// =============================================================================

// Listener is invoked once per tick with the new current time.
type Listener func(ctx context.Context, now Tick) error

// Clock owns playtime and fans every tick out to its listeners.
// Listeners run synchronously, in subscription order, on the goroutine that
// called Advance. A listener must not call Advance.
type Clock struct {
	mu        sync.RWMutex
	now       Tick
	nextID    int
	listeners []subscription
}

type subscription struct {
	id int
	fn Listener
}

func NewClock(start Tick) *Clock {
	return &Clock{now: start}
}

// Now returns the current playtime.
func (c *Clock) Now() Tick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves playtime without notifying listeners. Used when restoring a save.
func (c *Clock) Set(t Tick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Subscribe registers fn and returns a function that removes it.
func (c *Clock) Subscribe(fn Listener) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, subscription{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.listeners {
			if s.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Advance moves playtime forward by one tick and notifies every listener.
// All listeners run even if one fails; their errors are joined.
func (c *Clock) Advance(ctx context.Context) (Tick, error) {
	c.mu.Lock()
	c.now++
	now := c.now
	listeners := make([]subscription, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	var errs []error
	for _, s := range listeners {
		if err := s.fn(ctx, now); err != nil {
			errs = append(errs, err)
		}
	}
	return now, errors.Join(errs...)
}

// AdvanceBy runs n single-tick advances. It stops early if ctx is cancelled
// and returns the last error seen, if any.
func (c *Clock) AdvanceBy(ctx context.Context, n Tick) (Tick, error) {
	var lastErr error
	now := c.Now()
	for i := Tick(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return now, err
		}
		var err error
		now, err = c.Advance(ctx)
		if err != nil {
			lastErr = err
		}
	}
	return now, lastErr
}
