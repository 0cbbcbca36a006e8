package queue_test

import (
	"testing"

	"github.com/randomizedcoder/injector-bench/internal/queue"
	"github.com/stretchr/testify/require"
)

func testQueue[T comparable](t *testing.T, q queue.Queue[T], val T, name string) {
	t.Helper()

	// Empty queue returns false
	if _, ok := q.TryPop(); ok {
		t.Errorf("%s: expected TryPop() = false on empty queue", name)
	}

	q.Push(val)

	// TryPop returns pushed value
	got, ok := popRetry(q)
	if !ok {
		t.Errorf("%s: expected TryPop() = true after Push()", name)
	}
	if got != val {
		t.Errorf("%s: expected %v, got %v", name, val, got)
	}

	// Queue is empty again
	if _, ok := q.TryPop(); ok {
		t.Errorf("%s: expected TryPop() = false after draining", name)
	}
}

// popRetry retries TryPop a bounded number of times, since the contract
// permits a spurious false.
func popRetry[T any](q queue.Queue[T]) (T, bool) {
	for i := 0; i < 64; i++ {
		if v, ok := q.TryPop(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func newQueue(t *testing.T, kind queue.Kind, size int) queue.Queue[int] {
	t.Helper()
	q, err := queue.New[int](kind, size)
	require.NoError(t, err)
	return q
}

// Test that every implementation satisfies the interface
func TestQueueInterface(t *testing.T) {
	for _, kind := range queue.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			testQueue(t, newQueue(t, kind, 8), 42, string(kind))
		})
	}
}

func TestQueue_FIFO_SingleProducer(t *testing.T) {
	// The sharded ring only orders items within a shard.
	for _, kind := range []queue.Kind{queue.KindInjector, queue.KindList, queue.KindChannel, queue.KindRing} {
		t.Run(string(kind), func(t *testing.T) {
			q := newQueue(t, kind, 500)
			for i := 0; i < 500; i++ {
				q.Push(i)
			}
			for i := 0; i < 500; i++ {
				got, ok := q.TryPop()
				if !ok {
					t.Fatalf("expected TryPop() = true for item %d", i)
				}
				if got != i {
					t.Errorf("FIFO violation: expected %d, got %d", i, got)
				}
			}
		})
	}
}

func TestQueue_DrainsEverything(t *testing.T) {
	for _, kind := range queue.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			q := newQueue(t, kind, 1000)
			for i := 0; i < 1000; i++ {
				q.Push(i)
			}
			seen := make(map[int]bool, 1000)
			for len(seen) < 1000 {
				v, ok := popRetry(q)
				require.True(t, ok, "queue ran dry after %d items", len(seen))
				require.False(t, seen[v], "duplicate item %d", v)
				seen[v] = true
			}
			_, ok := q.TryPop()
			require.False(t, ok)
		})
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := queue.New[int]("stack", 8)
	require.ErrorIs(t, err, queue.ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	testCases := []struct {
		in      string
		want    queue.Kind
		wantErr bool
	}{
		{"injector", queue.KindInjector, false},
		{" Channel ", queue.KindChannel, false},
		{"RING", queue.KindRing, false},
		{"sharded", queue.KindSharded, false},
		{"List", queue.KindList, false},
		{"deque", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := queue.ParseKind(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, queue.ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestChannelQueue_LenCap(t *testing.T) {
	q := queue.NewChannel[int](8)

	if q.Len() != 0 {
		t.Errorf("expected Len() = 0, got %d", q.Len())
	}
	if q.Cap() != 8 {
		t.Errorf("expected Cap() = 8, got %d", q.Cap())
	}

	q.Push(1)
	q.Push(2)

	if q.Len() != 2 {
		t.Errorf("expected Len() = 2, got %d", q.Len())
	}
}

func TestMPMCRing_LenCap(t *testing.T) {
	q := queue.NewMPMCRing[int](8)

	if q.Len() != 0 {
		t.Errorf("expected Len() = 0, got %d", q.Len())
	}
	if q.Cap() != 8 {
		t.Errorf("expected Cap() = 8, got %d", q.Cap())
	}

	q.Push(1)
	q.Push(2)

	if q.Len() != 2 {
		t.Errorf("expected Len() = 2, got %d", q.Len())
	}
}

func TestMPMCRing_PowerOfTwo(t *testing.T) {
	// Size 5 should round up to 8
	q := queue.NewMPMCRing[int](5)
	if q.Cap() != 8 {
		t.Errorf("expected Cap() = 8 (rounded up), got %d", q.Cap())
	}

	// Size 8 should stay 8
	q2 := queue.NewMPMCRing[int](8)
	if q2.Cap() != 8 {
		t.Errorf("expected Cap() = 8, got %d", q2.Cap())
	}
}

func TestMPMCRing_Wraparound(t *testing.T) {
	q := queue.NewMPMCRing[int](4)
	for lap := 0; lap < 10; lap++ {
		for i := 0; i < 4; i++ {
			q.Push(lap*4 + i)
		}
		for i := 0; i < 4; i++ {
			got, ok := q.TryPop()
			require.True(t, ok)
			require.Equal(t, lap*4+i, got)
		}
	}
}

func TestSharded_Shards(t *testing.T) {
	q, err := queue.NewSharded[int](100, 4)
	require.NoError(t, err)
	require.Equal(t, 4, q.Shards())
}
