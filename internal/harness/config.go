package harness

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/randomizedcoder/injector-bench/internal/cancel"
	"github.com/randomizedcoder/injector-bench/internal/queue"
	"github.com/randomizedcoder/injector-bench/internal/tick"
)

// ErrInvalidConfig is returned by Validate and Run for unusable settings.
var ErrInvalidConfig = errors.New("harness: invalid config")

// Config describes one benchmark run.
type Config struct {
	Producers        int
	Consumers        int
	ItemsPerProducer int64

	// Queue selects the backend. Empty means queue.KindInjector.
	Queue queue.Kind

	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration

	// PinCPUs locks every unit to its own OS thread and CPU.
	PinCPUs bool

	// ProgressInterval enables periodic Progress reports. Zero disables them.
	ProgressInterval time.Duration
	// Ticker selects the progress ticker. Empty means tick.KindAtomic.
	Ticker tick.Kind

	// Canceler selects how units poll for cancellation. Empty means
	// cancel.KindAtomic.
	Canceler cancel.Kind

	// DiscardItems makes consumers count claims and latency without
	// keeping the claimed items. Verify can then only check counts.
	DiscardItems bool

	// MemoryLimit rejects runs whose EstimateBytes exceeds it. Zero means
	// no limit.
	MemoryLimit int64
}

// TotalItems returns Producers * ItemsPerProducer.
func (c Config) TotalItems() int64 {
	return int64(c.Producers) * c.ItemsPerProducer
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Producers < 0:
		return fmt.Errorf("%w: producers %d < 0", ErrInvalidConfig, c.Producers)
	case c.Consumers < 0:
		return fmt.Errorf("%w: consumers %d < 0", ErrInvalidConfig, c.Consumers)
	case c.ItemsPerProducer < 0:
		return fmt.Errorf("%w: items per producer %d < 0", ErrInvalidConfig, c.ItemsPerProducer)
	case c.Producers > 0 && c.ItemsPerProducer > math.MaxInt64/int64(c.Producers):
		return fmt.Errorf("%w: %d producers x %d items overflows", ErrInvalidConfig, c.Producers, c.ItemsPerProducer)
	case c.TotalItems() > 0 && c.Consumers == 0:
		return fmt.Errorf("%w: %d items but no consumers", ErrInvalidConfig, c.TotalItems())
	case c.Timeout < 0:
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	case c.ProgressInterval < 0:
		return fmt.Errorf("%w: negative progress interval", ErrInvalidConfig)
	case c.MemoryLimit < 0:
		return fmt.Errorf("%w: negative memory limit", ErrInvalidConfig)
	}

	if c.Queue != "" {
		if _, err := queue.ParseKind(string(c.Queue)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if _, err := tick.ParseKind(string(c.Ticker)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := cancel.ParseKind(string(c.Canceler)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MemoryLimit > 0 {
		if need := c.EstimateBytes(); need > c.MemoryLimit {
			return fmt.Errorf("%w: %s queue needs about %s, over the %s limit; lower the item count or discard items",
				ErrInvalidConfig, c.queueKind(), humanize.IBytes(uint64(need)), humanize.IBytes(uint64(c.MemoryLimit)))
		}
	}
	return nil
}

// queueKind returns the canonical backend name; Validate has already
// rejected names ParseKind does not know.
func (c Config) queueKind() queue.Kind {
	if c.Queue == "" {
		return queue.KindInjector
	}
	if k, err := queue.ParseKind(string(c.Queue)); err == nil {
		return k
	}
	return c.Queue
}

func (c Config) tickerKind() tick.Kind {
	k, err := tick.ParseKind(string(c.Ticker))
	if err != nil {
		return c.Ticker
	}
	return k
}

func (c Config) cancelerKind() cancel.Kind {
	k, err := cancel.ParseKind(string(c.Canceler))
	if err != nil {
		return c.Canceler
	}
	return k
}
