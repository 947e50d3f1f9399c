// Package timer provides the per-question countdown used to drive live
// quiz progression.
package timer

import (
	"sync"
	"time"
)

// Countdown runs a single-shot countdown. The expiry channel fires exactly
// once, when elapsed time reaches the total. There is no pause/resume; a
// consumer switching questions discards the old countdown (Stop) and
// creates a new one.
//
// Stop always releases the underlying timer resource, whether or not the
// countdown already expired, and is safe to call multiple times. Callers
// must not rely on garbage collection to reclaim a running countdown.
type Countdown struct {
	total   time.Duration
	started time.Time

	timer   *time.Timer
	expired chan struct{}
	done    chan struct{}

	fireOnce sync.Once
	stopOnce sync.Once
}

// New starts a countdown for the given duration.
func New(total time.Duration) *Countdown {
	c := &Countdown{
		total:   total,
		started: time.Now(),
		timer:   time.NewTimer(total),
		expired: make(chan struct{}),
		done:    make(chan struct{}),
	}

	go func() {
		select {
		case <-c.timer.C:
			c.fireOnce.Do(func() { close(c.expired) })
		case <-c.done:
		}
	}()

	return c
}

// NewSeconds starts a countdown for a whole number of seconds, the unit
// quiz documents store their timer in.
func NewSeconds(seconds int) *Countdown {
	return New(time.Duration(seconds) * time.Second)
}

// Expired returns the channel closed when the countdown reaches zero.
// It never fires more than once and never fires after Stop preempted it.
func (c *Countdown) Expired() <-chan struct{} {
	return c.expired
}

// Remaining reports the time left, clamped at zero. Display code may render
// it fractionally; expiry is signalled only through Expired.
func (c *Countdown) Remaining() time.Duration {
	left := c.total - time.Since(c.started)
	if left < 0 {
		return 0
	}
	return left
}

// Stop releases the ticking resource. Safe to call whether or not the
// countdown already expired, and more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		c.timer.Stop()
		close(c.done)
	})
}
