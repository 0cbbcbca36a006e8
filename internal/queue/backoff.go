package queue

import "runtime"

const (
	spinLimit  = 6
	yieldLimit = 10
)

// Backoff performs exponential backoff in spin loops.
//
// Spin is for retrying after another goroutine made progress (a lost CAS).
// Snooze is for waiting on another goroutine to make progress; after a few
// rounds of spinning it yields the processor to the scheduler.
//
// The zero value is ready to use. A Backoff must not be shared.
type Backoff struct {
	step uint32
}

// Reset restarts the backoff sequence.
func (b *Backoff) Reset() {
	b.step = 0
}

// Spin backs off in a lock-free retry loop.
func (b *Backoff) Spin() {
	n := 1 << min(b.step, spinLimit)
	for i := 0; i < n; i++ {
		cpuRelax()
	}
	if b.step <= spinLimit {
		b.step++
	}
}

// Snooze backs off while waiting for another goroutine.
func (b *Backoff) Snooze() {
	if b.step <= spinLimit {
		n := 1 << b.step
		for i := 0; i < n; i++ {
			cpuRelax()
		}
	} else {
		runtime.Gosched()
	}
	if b.step <= yieldLimit {
		b.step++
	}
}

// IsCompleted reports whether backing off has run its course and the
// caller should switch to a blocking wait instead.
func (b *Backoff) IsCompleted() bool {
	return b.step > yieldLimit
}
