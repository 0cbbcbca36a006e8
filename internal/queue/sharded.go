package queue

import (
	"fmt"
	"sync/atomic"

	ring "github.com/randomizedcoder/go-lock-free-ring"
)

// defaultShards is the shard count New uses for KindSharded.
const defaultShards = 4

// ShardedQueue adapts go-lock-free-ring's sharded MPSC ring to the Queue contract.
//
// Producers are spread over the shards round-robin. The ring allows a single
// reader only, so TryPop takes a try-guard first: a consumer that finds the
// guard held reports false (contended) instead of waiting.
type ShardedQueue[T any] struct {
	r      *ring.ShardedRing
	shards uint64

	next atomic.Uint64 // Round-robin shard selector

	_pad0 [56]byte //nolint:unused

	readActive atomic.Uint32
}

// NewSharded creates a ShardedQueue holding at least capacity items.
//
// Shards fill independently, so the ring is allocated with headroom over
// capacity and rounded up to a power of 2.
func NewSharded[T any](capacity, shards int) (*ShardedQueue[T], error) {
	if shards < 1 {
		shards = 1
	}
	n := uint64(shards)
	for n < 2*uint64(capacity) {
		n <<= 1
	}

	r, err := ring.NewShardedRing(n, uint64(shards))
	if err != nil {
		return nil, fmt.Errorf("queue: sharded ring (capacity=%d, shards=%d): %w", n, shards, err)
	}
	return &ShardedQueue[T]{
		r:      r,
		shards: uint64(shards),
	}, nil
}

// Push adds an item to the next shard, spinning while that shard is full.
func (q *ShardedQueue[T]) Push(v T) {
	pid := q.next.Add(1) - 1
	var backoff Backoff
	for !q.r.Write(pid%q.shards, v) {
		backoff.Snooze()
	}
}

// TryPop removes and returns an item from the ring.
// Returns false if the ring is empty or another consumer holds the reader side.
func (q *ShardedQueue[T]) TryPop() (T, bool) {
	var zero T
	if !q.readActive.CompareAndSwap(0, 1) {
		return zero, false
	}
	v, ok := q.r.TryRead()
	q.readActive.Store(0)

	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Shards returns the number of ring shards.
func (q *ShardedQueue[T]) Shards() int {
	return int(q.shards)
}
