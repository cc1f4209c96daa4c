package swarm

import (
	"sync"
	"time"
)

// Clock is the fixed-period scheduler driving the tick sequence. Exactly one
// tick body runs to completion before the next is scheduled; Stop halts
// future ticks but never interrupts a tick in progress.
type Clock struct {
	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
	running bool
}

// NewClock returns a stopped clock.
func NewClock() *Clock {
	return &Clock{}
}

// Start begins issuing ticks every period, invoking step for each. The clock
// stops itself when step reports done. Start is idempotent: calling it while
// running is a no-op.
func (c *Clock) Start(period time.Duration, step func() (done bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.stopped = make(chan struct{})

	go func(stop, stopped chan struct{}) {
		defer close(stopped)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if step() {
					c.mu.Lock()
					if c.stopped == stopped {
						c.running = false
					}
					c.mu.Unlock()
					return
				}
			}
		}
	}(c.stop, c.stopped)
}

// Stop halts future ticks and waits for any tick in progress to complete.
// Idempotent.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	stopped := c.stopped
	c.mu.Unlock()

	<-stopped
}

// Running reports whether the clock is issuing ticks.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
