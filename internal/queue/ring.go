package queue

import (
	"sync/atomic"
)

type cell[T any] struct {
	seq atomic.Uint64
	val T
}

// MPMCRing is a bounded lock-free MPMC queue built on sequence-numbered cells.
//
// Each cell carries a ticket: a producer may fill cell i when its ticket
// equals the tail position, and a consumer may drain it when the ticket
// equals the head position plus one. Both sides claim positions with a CAS.
//
// Push waits while the ring is full, so size it for the workload.
type MPMCRing[T any] struct {
	buf  []cell[T]
	mask uint64

	// Cache line padding to prevent false sharing
	_pad0 [32]byte //nolint:unused

	head atomic.Uint64 // Advanced by consumers

	_pad1 [56]byte //nolint:unused

	tail atomic.Uint64 // Advanced by producers

	_pad2 [56]byte //nolint:unused
}

// NewMPMCRing creates an MPMCRing with the specified size.
// Size will be rounded up to the next power of 2.
func NewMPMCRing[T any](size int) *MPMCRing[T] {
	// Round up to power of 2
	n := uint64(2)
	for n < uint64(size) {
		n <<= 1
	}

	r := &MPMCRing[T]{
		buf:  make([]cell[T], n),
		mask: n - 1,
	}
	for i := range r.buf {
		r.buf[i].seq.Store(uint64(i))
	}
	return r
}

// Push adds an item to the queue, spinning while the ring is full.
func (r *MPMCRing[T]) Push(v T) {
	var backoff Backoff
	for {
		tail := r.tail.Load()
		c := &r.buf[tail&r.mask]
		dif := int64(c.seq.Load()) - int64(tail)

		switch {
		case dif == 0:
			if r.tail.CompareAndSwap(tail, tail+1) {
				c.val = v
				// Publish to consumers
				c.seq.Store(tail + 1)
				return
			}
			backoff.Spin()
		case dif < 0:
			// Full: wait for a consumer to free the cell.
			backoff.Snooze()
		default:
			// Another producer moved the tail.
		}
	}
}

// TryPop removes and returns an item from the queue.
// Returns false if the queue is empty or another consumer won the cell.
func (r *MPMCRing[T]) TryPop() (T, bool) {
	var zero T
	head := r.head.Load()
	c := &r.buf[head&r.mask]
	dif := int64(c.seq.Load()) - int64(head+1)

	if dif != 0 || !r.head.CompareAndSwap(head, head+1) {
		return zero, false
	}

	v := c.val
	c.val = zero
	// Hand the cell back to producers for the next lap
	c.seq.Store(head + r.mask + 1)
	return v, true
}

// Len returns the current number of items in the queue.
// This is an approximation and may be slightly stale.
func (r *MPMCRing[T]) Len() int {
	tail := r.tail.Load()
	head := r.head.Load()
	if head > tail {
		return 0
	}
	return int(tail - head)
}

// Cap returns the capacity of the queue.
func (r *MPMCRing[T]) Cap() int {
	return len(r.buf)
}
