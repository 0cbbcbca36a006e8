package tick

import (
	"sync/atomic"
	"time"
	_ "unsafe" // Required for go:linkname
)

// nanotime returns the current monotonic time in nanoseconds.
//
// Note: This uses go:linkname to access an internal runtime function.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Nanotime returns a monotonic timestamp in nanoseconds.
//
// Only differences between two Nanotime values are meaningful. Work items
// are stamped with it at push time and again at claim time; the difference
// can never be negative because the clock is monotonic.
func Nanotime() int64 {
	return nanotime()
}

// AtomicTicker uses a CAS on a nanotime stamp for tick checks.
//
// It is safe for several consumers to poll the same AtomicTicker: the CAS
// guarantees that exactly one of them observes each tick.
type AtomicTicker struct {
	interval int64 // nanoseconds
	lastTick atomic.Int64
}

// NewAtomicTicker creates an AtomicTicker with the specified interval.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{
		interval: int64(interval),
	}
	t.lastTick.Store(nanotime())
	return t
}

// Tick returns true if the interval has elapsed since the last tick.
func (a *AtomicTicker) Tick() bool {
	now := nanotime()
	last := a.lastTick.Load()

	if now-last >= a.interval {
		return a.lastTick.CompareAndSwap(last, now)
	}
	return false
}

func (a *AtomicTicker) Reset() {
	a.lastTick.Store(nanotime())
}

// Stop is a no-op for AtomicTicker.
func (a *AtomicTicker) Stop() {}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return time.Duration(a.interval)
}
