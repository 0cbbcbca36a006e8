package queue

import (
	"sync/atomic"
)

// Slot state bits.
const (
	// slotWrite is set once the value has been stored in the slot.
	slotWrite uint32 = 1 << 0
)

const (
	// lap is the number of indices one block covers.
	lap = 64
	// blockCap is the number of values a block holds. The last index of
	// every lap is a sentinel that marks the move to the next block.
	blockCap = lap - 1
	// shift is the number of low index bits reserved for metadata.
	shift = 1
	// hasNext is set on the head index when the head block is known not
	// to be the last one, so Steal can skip reading the tail.
	hasNext = 1
)

// Steal is the outcome of Injector.Steal.
type Steal uint8

const (
	// StealEmpty means the queue had no items.
	StealEmpty Steal = iota
	// StealSuccess means an item was claimed.
	StealSuccess
	// StealRetry means another consumer won the race; items may remain.
	StealRetry
)

// String returns the outcome name.
func (s Steal) String() string {
	switch s {
	case StealEmpty:
		return "empty"
	case StealSuccess:
		return "success"
	case StealRetry:
		return "retry"
	default:
		return "unknown"
	}
}

type slot[T any] struct {
	value T
	state atomic.Uint32
}

// waitWrite spins until the producer that reserved this slot has stored its value.
func (s *slot[T]) waitWrite() {
	var b Backoff
	for s.state.Load()&slotWrite == 0 {
		b.Snooze()
	}
}

type block[T any] struct {
	next  atomic.Pointer[block[T]]
	slots [blockCap]slot[T]
}

// waitNext spins until the next block has been linked.
func (b *block[T]) waitNext() *block[T] {
	var bo Backoff
	for {
		if n := b.next.Load(); n != nil {
			return n
		}
		bo.Snooze()
	}
}

type position[T any] struct {
	index atomic.Uint64
	block atomic.Pointer[block[T]]
}

// Injector is an unbounded lock-free MPMC FIFO queue.
//
// Items live in a linked list of blocks, each holding 63 slots. Producers
// reserve a slot by advancing the tail index with a CAS; the producer that
// reserves the last slot of a block links in the next one. Consumers claim a
// slot by advancing the head index the same way. Blocks the head has moved
// past become unreachable and are left to the garbage collector.
//
// Items pushed by a single producer are popped in push order. There is no
// ordering between producers.
type Injector[T any] struct {
	_pad0 [64]byte //nolint:unused

	head position[T] // Advanced by consumers

	_pad1 [48]byte //nolint:unused

	tail position[T] // Advanced by producers

	_pad2 [48]byte //nolint:unused
}

// NewInjector creates an empty Injector.
func NewInjector[T any]() *Injector[T] {
	q := &Injector[T]{}
	b := new(block[T])
	q.head.block.Store(b)
	q.tail.block.Store(b)
	return q
}

// Push adds an item to the back of the queue.
//
// Push never fails and never waits on consumers. It may briefly spin while
// another producer links in a new block.
func (q *Injector[T]) Push(v T) {
	var backoff Backoff
	tail := q.tail.index.Load()
	blk := q.tail.block.Load()
	var next *block[T]

	for {
		offset := (tail >> shift) % lap

		// Another producer took the last slot and is linking the next block.
		if offset == blockCap {
			backoff.Snooze()
			tail = q.tail.index.Load()
			blk = q.tail.block.Load()
			continue
		}

		// Allocate ahead of the CAS so the link-in window stays short.
		if offset+1 == blockCap && next == nil {
			next = new(block[T])
		}

		newTail := tail + (1 << shift)
		if q.tail.index.CompareAndSwap(tail, newTail) {
			if offset+1 == blockCap {
				q.tail.block.Store(next)
				q.tail.index.Store(newTail + (1 << shift))
				blk.next.Store(next)
			}

			s := &blk.slots[offset]
			s.value = v
			s.state.Or(slotWrite)
			return
		}

		tail = q.tail.index.Load()
		blk = q.tail.block.Load()
		backoff.Spin()
	}
}

// Steal attempts to remove the item at the front of the queue.
//
// It never waits for items to arrive. StealRetry is returned when another
// consumer claimed the front slot first.
func (q *Injector[T]) Steal() (T, Steal) {
	var zero T
	var backoff Backoff
	var (
		head   uint64
		blk    *block[T]
		offset uint64
	)

	for {
		head = q.head.index.Load()
		blk = q.head.block.Load()
		offset = (head >> shift) % lap

		// Another consumer is moving the head to the next block.
		if offset != blockCap {
			break
		}
		backoff.Snooze()
	}

	newHead := head + (1 << shift)
	if newHead&hasNext == 0 {
		tail := q.tail.index.Load()

		if head>>shift == tail>>shift {
			return zero, StealEmpty
		}

		// Head and tail are in different blocks.
		if (head>>shift)/lap != (tail>>shift)/lap {
			newHead |= hasNext
		}
	}

	if !q.head.index.CompareAndSwap(head, newHead) {
		return zero, StealRetry
	}

	// The last slot of the block was claimed; move the head to the next block.
	if offset+1 == blockCap {
		next := blk.waitNext()
		nextIndex := (newHead &^ hasNext) + (1 << shift)
		if next.next.Load() != nil {
			nextIndex |= hasNext
		}
		q.head.block.Store(next)
		q.head.index.Store(nextIndex)
	}

	s := &blk.slots[offset]
	s.waitWrite()
	v := s.value
	s.value = zero
	return v, StealSuccess
}

// TryPop removes and returns the front item.
// Returns false if the queue is empty or the claim lost a race.
func (q *Injector[T]) TryPop() (T, bool) {
	v, st := q.Steal()
	return v, st == StealSuccess
}

// IsEmpty reports whether the queue was empty at the time of the call.
func (q *Injector[T]) IsEmpty() bool {
	head := q.head.index.Load()
	tail := q.tail.index.Load()
	return head>>shift == tail>>shift
}

// Len returns the number of items in the queue.
// This is a snapshot and may be stale by the time it is used.
func (q *Injector[T]) Len() int {
	for {
		tail := q.tail.index.Load()
		head := q.head.index.Load()

		// Retry until tail was stable across the head read.
		if q.tail.index.Load() != tail {
			continue
		}

		tail &^= (1 << shift) - 1
		head &^= (1 << shift) - 1

		// Indices sitting on a block sentinel belong to the next block.
		if (tail>>shift)&(lap-1) == lap-1 {
			tail += 1 << shift
		}
		if (head>>shift)&(lap-1) == lap-1 {
			head += 1 << shift
		}

		// Rotate both so the head falls into the first block.
		laps := (head >> shift) / lap
		tail -= (laps * lap) << shift
		head -= (laps * lap) << shift

		tail >>= shift
		head >>= shift

		// One sentinel index per block boundary between head and tail.
		return int(tail - head - tail/lap)
	}
}
