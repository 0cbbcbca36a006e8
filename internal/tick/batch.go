package tick

import "time"

// BatchTicker checks the clock only every N calls to Tick.
//
// Not safe for concurrent use; give each polling goroutine its own.
type BatchTicker struct {
	interval time.Duration
	every    int
	count    int
	lastTick time.Time
}

// NewBatch creates a BatchTicker that reads the clock every N calls.
// every < 1 is treated as 1.
func NewBatch(interval time.Duration, every int) *BatchTicker {
	return &BatchTicker{
		interval: interval,
		every:    max(every, 1),
		lastTick: time.Now(),
	}
}

// Tick returns true if the interval has elapsed. Calls that are not a
// multiple of Every return false without reading the clock.
func (b *BatchTicker) Tick() bool {
	b.count++
	if b.count%b.every != 0 {
		return false
	}

	now := time.Now()
	if now.Sub(b.lastTick) < b.interval {
		return false
	}
	b.lastTick = now
	return true
}

func (b *BatchTicker) Reset() {
	b.count = 0
	b.lastTick = time.Now()
}

func (b *BatchTicker) Stop() {}

// Every returns the batch size.
func (b *BatchTicker) Every() int {
	return b.every
}

// Interval returns the ticker's interval.
func (b *BatchTicker) Interval() time.Duration {
	return b.interval
}
