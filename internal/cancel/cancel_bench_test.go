package cancel_test

import (
	"context"
	"testing"

	"github.com/randomizedcoder/injector-bench/internal/cancel"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkBool bool

func benchmarkDone(b *testing.B, c cancel.Canceler) {
	b.ReportAllocs()
	b.ResetTimer()

	var result bool
	for i := 0; i < b.N; i++ {
		result = c.Done()
	}
	sinkBool = result
}

func BenchmarkCancel_Context_Done(b *testing.B) {
	benchmarkDone(b, cancel.NewContext(context.Background()))
}

func BenchmarkCancel_Atomic_Done(b *testing.B) {
	benchmarkDone(b, cancel.NewAtomic())
}

// Parallel benchmarks: every consumer polls the same signal

func BenchmarkCancel_Atomic_Done_Parallel(b *testing.B) {
	c := cancel.NewAtomic()
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		var result bool
		for pb.Next() {
			result = c.Done()
		}
		sinkBool = result
	})
}
