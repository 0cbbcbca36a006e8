package queue_test

import (
	"testing"

	"github.com/randomizedcoder/injector-bench/internal/queue"
	"github.com/stretchr/testify/require"
)

func TestInjector_StealOutcomes(t *testing.T) {
	q := queue.NewInjector[string]()

	_, st := q.Steal()
	require.Equal(t, queue.StealEmpty, st)

	q.Push("a")
	v, st := q.Steal()
	require.Equal(t, queue.StealSuccess, st)
	require.Equal(t, "a", v)

	_, st = q.Steal()
	require.Equal(t, queue.StealEmpty, st)
}

func TestInjector_LenAcrossBlocks(t *testing.T) {
	q := queue.NewInjector[int]()
	require.True(t, q.IsEmpty())
	require.Equal(t, 0, q.Len())

	// 63 slots per block; cover several block boundaries.
	const n = 63*3 + 7
	for i := 0; i < n; i++ {
		q.Push(i)
		require.Equal(t, i+1, q.Len())
	}
	require.False(t, q.IsEmpty())

	for i := 0; i < n; i++ {
		v, ok := q.TryPop()
		require.True(t, ok)
		require.Equal(t, i, v)
		require.Equal(t, n-i-1, q.Len())
	}
	require.True(t, q.IsEmpty())
}

func TestInjector_InterleavedPushPop(t *testing.T) {
	q := queue.NewInjector[int]()
	next := 0
	for i := 0; i < 10_000; i++ {
		q.Push(i)
		if i%3 == 2 {
			for j := 0; j < 2; j++ {
				v, ok := q.TryPop()
				require.True(t, ok)
				require.Equal(t, next, v)
				next++
			}
		}
	}
	for {
		v, ok := q.TryPop()
		if !ok {
			break
		}
		require.Equal(t, next, v)
		next++
	}
	require.Equal(t, 10_000, next)
}

func TestInjector_PopReturnsPushedPointer(t *testing.T) {
	q := queue.NewInjector[*int]()
	x := 7
	q.Push(&x)
	v, ok := q.TryPop()
	require.True(t, ok)
	require.Same(t, &x, v)
}

func TestSteal_String(t *testing.T) {
	require.Equal(t, "empty", queue.StealEmpty.String())
	require.Equal(t, "success", queue.StealSuccess.String())
	require.Equal(t, "retry", queue.StealRetry.String())
	require.Equal(t, "unknown", queue.Steal(9).String())
}

func TestBackoff(t *testing.T) {
	var b queue.Backoff
	for i := 0; i < 10; i++ {
		require.False(t, b.IsCompleted())
		b.Snooze()
	}
	b.Snooze()
	require.True(t, b.IsCompleted())

	b.Reset()
	require.False(t, b.IsCompleted())

	// Spin alone never completes the sequence.
	for i := 0; i < 100; i++ {
		b.Spin()
	}
	require.False(t, b.IsCompleted())
}
