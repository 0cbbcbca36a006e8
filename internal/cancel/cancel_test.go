package cancel_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/randomizedcoder/injector-bench/internal/cancel"
	"github.com/stretchr/testify/require"
)

// Test that both implementations satisfy the interface
func TestCancelerInterface(t *testing.T) {
	testCases := []struct {
		name string
		c    cancel.Canceler
	}{
		{"Context", cancel.NewContext(context.Background())},
		{"Atomic", cancel.NewAtomic()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.False(t, tc.c.Done(), "expected Done() = false initially")

			tc.c.Cancel()
			require.True(t, tc.c.Done(), "expected Done() = true after Cancel()")

			// Verify idempotent
			tc.c.Cancel()
			require.True(t, tc.c.Done())
		})
	}
}

func TestContextCanceler_Context(t *testing.T) {
	c := cancel.NewContext(context.Background())
	ctx := c.Context()
	require.NotNil(t, ctx)
	require.NoError(t, ctx.Err())

	c.Cancel()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestContextCanceler_Cause(t *testing.T) {
	parent, cancelParent := context.WithCancelCause(context.Background())
	c := cancel.NewContext(parent)
	require.NoError(t, c.Cause())

	boom := errors.New("boom")
	cancelParent(boom)
	require.True(t, c.Done())
	require.ErrorIs(t, c.Cause(), boom)

	own := cancel.NewContext(context.Background())
	own.Cancel()
	require.ErrorIs(t, own.Cause(), cancel.ErrCanceled)
}

func TestParseKind(t *testing.T) {
	testCases := []struct {
		in      string
		want    cancel.Kind
		wantErr bool
	}{
		{"", cancel.KindAtomic, false},
		{"atomic", cancel.KindAtomic, false},
		{" Context ", cancel.KindContext, false},
		{"channel", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := cancel.ParseKind(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, cancel.ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNew_FiresWhenContextEnds(t *testing.T) {
	for _, kind := range cancel.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			ctx, cancelCtx := context.WithCancel(context.Background())
			c, release, err := cancel.New(ctx, kind)
			require.NoError(t, err)
			defer release()

			require.False(t, c.Done())
			cancelCtx()
			require.Eventually(t, c.Done, time.Second, time.Millisecond)
		})
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, _, err := cancel.New(context.Background(), "spin")
	require.ErrorIs(t, err, cancel.ErrUnknownKind)
}

func TestBind_CancelsOnContextEnd(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	c := cancel.NewAtomic()
	release := cancel.Bind(ctx, c)
	defer release()

	require.False(t, c.Done())
	cancelCtx()
	require.Eventually(t, c.Done, time.Second, time.Millisecond)
}

func TestBind_ReleaseStopsWatching(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	c := cancel.NewAtomic()
	release := cancel.Bind(ctx, c)

	release()
	cancelCtx()
	time.Sleep(10 * time.Millisecond)
	require.False(t, c.Done(), "released binding must not cancel")
}

func TestBind_AlreadyDone(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	cancelCtx()
	c := cancel.NewAtomic()
	defer cancel.Bind(ctx, c)()
	require.Eventually(t, c.Done, time.Second, time.Millisecond)
}

// TestAtomicCanceler_Race tests concurrent access to AtomicCanceler.
// Run with: go test -race ./internal/cancel
func TestAtomicCanceler_Race(t *testing.T) {
	c := cancel.NewAtomic()
	var wg sync.WaitGroup

	// Spawn readers
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10000; j++ {
				_ = c.Done()
			}
		}()
	}

	// Spawn writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Cancel()
	}()

	wg.Wait()
	require.True(t, c.Done())
}
