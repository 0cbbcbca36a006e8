//go:build amd64

package tick

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrTSCNotSupported is returned when TSC is not available on this architecture.
var ErrTSCNotSupported = errors.New("tick: TSC ticker requires amd64 architecture")

// rdtsc reads the CPU's Time Stamp Counter.
// Implemented in tsc_amd64.s
func rdtsc() uint64

// CalibrateTSC measures CPU cycles per nanosecond against the wall clock
// over ~10ms. Frequency scaling and power states skew the result.
func CalibrateTSC() (float64, error) {
	// Warm up the TSC path
	rdtsc()
	rdtsc()

	start := rdtsc()
	t1 := time.Now()
	time.Sleep(10 * time.Millisecond)
	end := rdtsc()
	t2 := time.Now()

	nanos := float64(t2.Sub(t1).Nanoseconds())
	if nanos <= 0 || end <= start {
		return 0, errors.New("tick: TSC did not advance during calibration")
	}
	return float64(end-start) / nanos, nil
}

// TSCTicker compares raw TSC readings instead of reading the OS clock.
// It may drift with CPU frequency changes.
type TSCTicker struct {
	intervalCycles uint64
	lastTick       atomic.Uint64
	cyclesPerNs    float64
}

// NewTSC creates a TSCTicker with an explicit cycles-per-nanosecond ratio,
// e.g. 3.0 for a 3GHz invariant TSC.
func NewTSC(interval time.Duration, cyclesPerNs float64) (*TSCTicker, error) {
	if cyclesPerNs <= 0 {
		return nil, errors.New("tick: cycles per ns must be positive")
	}
	t := &TSCTicker{
		intervalCycles: uint64(float64(interval.Nanoseconds()) * cyclesPerNs),
		cyclesPerNs:    cyclesPerNs,
	}
	t.lastTick.Store(rdtsc())
	return t, nil
}

// NewTSCCalibrated creates a TSCTicker after calibrating, blocking ~10ms.
func NewTSCCalibrated(interval time.Duration) (*TSCTicker, error) {
	cpn, err := CalibrateTSC()
	if err != nil {
		return nil, err
	}
	return NewTSC(interval, cpn)
}

// Tick returns true if the interval has elapsed since the last tick.
func (t *TSCTicker) Tick() bool {
	now := rdtsc()
	last := t.lastTick.Load()

	if now-last >= t.intervalCycles {
		return t.lastTick.CompareAndSwap(last, now)
	}
	return false
}

func (t *TSCTicker) Reset() {
	t.lastTick.Store(rdtsc())
}

func (t *TSCTicker) Stop() {}

// CyclesPerNs returns the calibrated cycles-per-nanosecond ratio.
func (t *TSCTicker) CyclesPerNs() float64 {
	return t.cyclesPerNs
}
