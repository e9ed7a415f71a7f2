// Package flush provides a coalescing scheduler for persistence and upload.
//
// Mutations arrive in bursts — a user editing quickly, a sync admitting a
// batch — and each one wants durable state pushed out. Flushing per
// mutation wastes writes; debouncing with timers risks dropping the tail.
// The Coalescer collapses any burst into at most one in-flight flush plus
// one queued follow-up: if a trigger arrives while a flush is running,
// exactly one more flush fires after it completes.
package flush

import "sync"

// Coalescer serializes calls to a flush function, collapsing concurrent
// triggers. The flush function runs on its own goroutine and must be safe
// to call repeatedly.
type Coalescer struct {
	mu      sync.Mutex
	idle    sync.Cond
	fn      func()
	running bool
	queued  bool
}

// New returns a Coalescer invoking fn on each flush.
func New(fn func()) *Coalescer {
	c := &Coalescer{fn: fn}
	c.idle.L = &c.mu
	return c
}

// Trigger requests a flush. If none is running, one starts; if one is
// in flight, a single follow-up is queued regardless of how many triggers
// arrive meanwhile. Trigger never blocks.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.queued = true
		return
	}
	c.running = true
	go c.run()
}

func (c *Coalescer) run() {
	for {
		c.fn()
		c.mu.Lock()
		if c.queued {
			c.queued = false
			c.mu.Unlock()
			continue
		}
		c.running = false
		c.idle.Broadcast()
		c.mu.Unlock()
		return
	}
}

// Wait blocks until no flush is running or queued. Intended for shutdown
// and tests.
func (c *Coalescer) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.running || c.queued {
		c.idle.Wait()
	}
}
