// Package queue provides unbounded-by-contract MPMC queues for the injector benchmark.
//
// This package offers one primary implementation and several comparison
// backends of the Queue interface:
//   - Injector: lock-free linked list of fixed-size blocks (the default)
//   - ListQueue: unbounded lock-free linked list (Michael-Scott)
//   - ChannelQueue: standard library approach using a buffered channel
//   - MPMCRing: bounded sequence-cell ring buffer
//   - ShardedQueue: go-lock-free-ring sharded ring with a guarded reader side
//
// # Delivery (IMPORTANT)
//
// Every implementation delivers each pushed item to exactly one TryPop caller.
// TryPop never blocks. It may report false while items are present if it
// lost a race with another consumer; callers that need the item simply retry.
//
// The bounded backends (ChannelQueue, MPMCRing, ShardedQueue) only behave as
// unbounded queues when sized for the whole workload. New does that when
// given the total item count as capacity hint.
package queue

import (
	"errors"
	"fmt"
	"strings"
)

// Queue is a multi-producer multi-consumer queue.
//
// Push never fails. TryPop is non-blocking and returns false if the
// queue is empty or the pop lost a race with another consumer.
type Queue[T any] interface {
	// Push adds an item to the queue.
	// Safe to call from any number of goroutines.
	Push(T)

	// TryPop removes and returns an item from the queue.
	// Returns false if no item could be claimed right now.
	TryPop() (T, bool)
}

// Kind names a Queue implementation.
type Kind string

const (
	KindInjector Kind = "injector"
	KindList     Kind = "list"
	KindChannel  Kind = "channel"
	KindRing     Kind = "ring"
	KindSharded  Kind = "sharded"
)

// ErrUnknownKind is returned for a queue name that has no implementation.
var ErrUnknownKind = errors.New("queue: unknown kind")

// Kinds lists every implementation, primary first.
func Kinds() []Kind {
	return []Kind{KindInjector, KindList, KindChannel, KindRing, KindSharded}
}

// ParseKind resolves a case-insensitive queue name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New creates a queue of the given kind.
//
// capacityHint is ignored by the unbounded Injector and ListQueue. Bounded backends are sized to
// hold at least capacityHint items so that Push never has to wait.
func New[T any](kind Kind, capacityHint int) (Queue[T], error) {
	if capacityHint < 1 {
		capacityHint = 1
	}
	switch kind {
	case KindInjector:
		return NewInjector[T](), nil
	case KindList:
		return NewList[T](), nil
	case KindChannel:
		return NewChannel[T](capacityHint), nil
	case KindRing:
		return NewMPMCRing[T](capacityHint), nil
	case KindSharded:
		return NewSharded[T](capacityHint, defaultShards)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
}
