package queue

import (
	"sync/atomic"
)

type listNode[T any] struct {
	next  atomic.Pointer[listNode[T]]
	value T
}

// ListQueue is an unbounded lock-free MPMC FIFO queue built on a singly
// linked list with a dummy head node (Michael-Scott).
//
// Every Push allocates one node. Popped nodes become unreachable once the
// head has moved past them and are left to the garbage collector, so a
// node is never reused while another goroutine may still hold it.
type ListQueue[T any] struct {
	_pad0 [64]byte //nolint:unused

	head atomic.Pointer[listNode[T]] // Dummy node; advanced by consumers

	_pad1 [56]byte //nolint:unused

	tail atomic.Pointer[listNode[T]] // Last or second-to-last node

	_pad2 [56]byte //nolint:unused
}

// NewList creates an empty ListQueue.
func NewList[T any]() *ListQueue[T] {
	q := &ListQueue[T]{}
	dummy := new(listNode[T])
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Push appends v. It never fails; it may retry while other producers
// race for the tail.
func (q *ListQueue[T]) Push(v T) {
	n := &listNode[T]{value: v}
	var backoff Backoff
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		// Tail is lagging; help the producer that linked next.
		if next != nil {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return
		}
		backoff.Spin()
	}
}

// TryPop removes and returns the front item.
// Returns false if the queue is empty or another consumer won the race.
func (q *ListQueue[T]) TryPop() (T, bool) {
	var zero T
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return zero, false
		}
		if head == tail {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if !q.head.CompareAndSwap(head, next) {
			return zero, false
		}
		// next is the new dummy; only the winner of the CAS touches its value.
		v := next.value
		next.value = zero
		return v, true
	}
}

// IsEmpty reports whether the queue was empty at the time of the call.
func (q *ListQueue[T]) IsEmpty() bool {
	return q.head.Load().next.Load() == nil
}
