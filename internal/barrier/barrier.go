// Package barrier provides a one-shot start barrier.
package barrier

import (
	"context"
	"sync/atomic"
)

// Barrier releases every waiter at once when the expected number of
// parties has arrived. It is one-shot: once open it stays open.
type Barrier struct {
	parties int64
	arrived atomic.Int64
	open    chan struct{}
}

// New creates a barrier for n parties. A barrier for zero parties is open.
func New(n int) *Barrier {
	b := &Barrier{
		parties: int64(n),
		open:    make(chan struct{}),
	}
	if n <= 0 {
		close(b.open)
	}
	return b
}

// Wait registers the caller's arrival and blocks until all parties have
// arrived or ctx is done. An arrival is counted even if ctx ends first.
func (b *Barrier) Wait(ctx context.Context) error {
	if b.arrived.Add(1) == b.parties {
		close(b.open)
		return nil
	}

	select {
	case <-b.open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Arrived returns the number of parties that have called Wait.
func (b *Barrier) Arrived() int {
	return int(b.arrived.Load())
}

// Done returns a channel closed when the barrier opens.
func (b *Barrier) Done() <-chan struct{} {
	return b.open
}
