//go:build !amd64

package tick

import (
	"errors"
	"time"
)

// ErrTSCNotSupported is returned when TSC is not available on this architecture.
var ErrTSCNotSupported = errors.New("tick: TSC ticker requires amd64 architecture")

// TSCTicker is a stub for non-amd64 architectures.
type TSCTicker struct{}

func CalibrateTSC() (float64, error) {
	return 0, ErrTSCNotSupported
}

func NewTSC(time.Duration, float64) (*TSCTicker, error) {
	return nil, ErrTSCNotSupported
}

func NewTSCCalibrated(time.Duration) (*TSCTicker, error) {
	return nil, ErrTSCNotSupported
}

func (t *TSCTicker) Tick() bool { return false }

func (t *TSCTicker) Reset() {}

func (t *TSCTicker) Stop() {}

func (t *TSCTicker) CyclesPerNs() float64 { return 0 }
