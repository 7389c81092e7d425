package queue

import (
	"context"
	"sync"
)

// Gate is a counting semaphore bounding the number of concurrently
// executing synthesis jobs. Only executing jobs hold permits; tasks that
// are merely pending consume nothing.
//
// Acquisition is FIFO in practice because the dispatch loop is the only
// acquirer. It is cancellable: an abandoned wait consumes no permit.
type Gate struct {
	permits chan struct{}
}

// NewGate creates a gate admitting at most capacity concurrent holders.
// A capacity below 1 is raised to 1.
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{
		permits: make(chan struct{}, capacity),
	}
}

// Acquire blocks until a permit is available or the context is cancelled.
// On success the returned permit must eventually be released exactly once;
// Release is idempotent so a second release from a different path is safe.
func (g *Gate) Acquire(ctx context.Context) (*Permit, error) {
	select {
	case g.permits <- struct{}{}:
		return &Permit{gate: g}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InUse returns the number of permits currently held.
func (g *Gate) InUse() int {
	return len(g.permits)
}

// Capacity returns the maximum number of concurrent permit holders.
func (g *Gate) Capacity() int {
	return cap(g.permits)
}

// Permit is one admission slot held by an executing task. A permit is
// released by the worker's deferred cleanup on every exit path, and may
// additionally be force-released by the sweeper when a worker hangs; the
// sync.Once guarantees the slot is returned exactly once either way.
type Permit struct {
	gate *Gate
	once sync.Once
}

// Release returns the slot to the gate. Safe to call more than once.
func (p *Permit) Release() {
	p.once.Do(func() {
		<-p.gate.permits
	})
}
