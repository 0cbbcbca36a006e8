// Package tick provides hot-loop periodic triggers and the clock used to
// timestamp work items.
//
// A consumer that busy-polls the queue cannot block on a timer channel
// without leaving its loop, so progress reporting is driven by a Ticker
// the consumer checks on every iteration:
//   - StdTicker: time.Ticker wrapped in a non-blocking select
//   - BatchTicker: reads the clock only every N calls
//   - AtomicTicker: CAS on a runtime.nanotime stamp (default)
//   - TSCTicker: raw CPU timestamp counter (amd64 only)
package tick

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ticker signals when a time interval has elapsed.
type Ticker interface {
	// Tick returns true if the interval has elapsed since the last tick.
	// This is a non-blocking check.
	Tick() bool

	// Reset starts a new interval from now.
	Reset()

	// Stop releases any resources held by the ticker.
	Stop()
}

// Kind names a Ticker implementation.
type Kind string

const (
	KindStd    Kind = "std"
	KindBatch  Kind = "batch"
	KindAtomic Kind = "atomic"
	KindTSC    Kind = "tsc"
)

// DefaultInterval is the default progress reporting interval.
const DefaultInterval = time.Second

// batchEvery is the clock-read stride New uses for KindBatch.
const batchEvery = 4096

// ErrUnknownKind is returned for a ticker name that has no implementation.
var ErrUnknownKind = errors.New("tick: unknown kind")

// ParseKind resolves a case-insensitive ticker name. Empty means KindAtomic.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAtomic, nil
	case KindStd, KindBatch, KindAtomic, KindTSC:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New creates a ticker of the given kind.
func New(kind Kind, interval time.Duration) (Ticker, error) {
	switch kind {
	case KindStd:
		return NewTicker(interval), nil
	case KindBatch:
		return NewBatch(interval, batchEvery), nil
	case KindAtomic, "":
		return NewAtomicTicker(interval), nil
	case KindTSC:
		t, err := NewTSCCalibrated(interval)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}

// StdTicker wraps time.Ticker for the Ticker interface.
//
// Each call to Tick performs a non-blocking select on the ticker's
// channel, which goes through the runtime timer machinery.
type StdTicker struct {
	ticker   *time.Ticker
	interval time.Duration
}

// NewTicker creates a StdTicker with the specified interval.
func NewTicker(interval time.Duration) *StdTicker {
	return &StdTicker{
		ticker:   time.NewTicker(interval),
		interval: interval,
	}
}

func (t *StdTicker) Tick() bool {
	select {
	case <-t.ticker.C:
		return true
	default:
		return false
	}
}

func (t *StdTicker) Reset() {
	t.ticker.Reset(t.interval)
}

func (t *StdTicker) Stop() {
	t.ticker.Stop()
}

// Interval returns the ticker's interval.
func (t *StdTicker) Interval() time.Duration {
	return t.interval
}
