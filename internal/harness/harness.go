// Package harness runs producers and consumers against one shared queue.
//
// Run creates the queue, a completion counter and a start barrier, starts
// every unit, and waits for all of them. Producers push their items and
// finish. Consumers busy-poll the queue and stop once the counter, which
// is bumped once per claimed item, reaches the total item count. Queue
// emptiness is never used as a stop signal.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/injector-bench/internal/affinity"
	"github.com/randomizedcoder/injector-bench/internal/barrier"
	"github.com/randomizedcoder/injector-bench/internal/cancel"
	"github.com/randomizedcoder/injector-bench/internal/log"
	"github.com/randomizedcoder/injector-bench/internal/queue"
	"github.com/randomizedcoder/injector-bench/internal/tick"
)

var (
	// ErrUnitPanicked wraps a panic raised inside a producer or consumer.
	ErrUnitPanicked = errors.New("harness: unit panicked")
	// ErrIncomplete is returned when a run was cancelled or timed out
	// before every item was claimed.
	ErrIncomplete = errors.New("harness: run incomplete")
)

// stopCheckMask sets how often producers look at the stop signal.
const stopCheckMask = 1<<10 - 1

// Role distinguishes producers from consumers.
type Role string

const (
	RoleProducer Role = "producer"
	RoleConsumer Role = "consumer"
)

// Reporter receives per-unit events as the run progresses.
// Methods are called concurrently from unit goroutines.
type Reporter interface {
	UnitWaiting(role Role, id int)
	ProducerDone(id int, elapsed time.Duration)
	ConsumerDone(id int, elapsed time.Duration, claimed int64)
	Progress(claimed, total uint64)
}

type nopReporter struct{}

func (nopReporter) UnitWaiting(Role, int)                  {}
func (nopReporter) ProducerDone(int, time.Duration)        {}
func (nopReporter) ConsumerDone(int, time.Duration, int64) {}
func (nopReporter) Progress(uint64, uint64)                {}

type unitTag struct {
	role Role
	id   int
}

func (t unitTag) String() string {
	return fmt.Sprintf("%s-%d", t.role, t.id)
}

// Run executes one benchmark run on a new queue of kind cfg.Queue.
//
// A nil reporter discards events. On ErrIncomplete the partial result is
// returned along with the error.
func Run(ctx context.Context, cfg Config, rep Reporter) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q, err := queue.New[WorkItem](cfg.queueKind(), int(min(cfg.TotalItems(), int64(maxCapacityHint))))
	if err != nil {
		return nil, err
	}
	return RunQueue(ctx, q, cfg, rep)
}

// maxCapacityHint caps bounded backends; larger runs should use the injector.
const maxCapacityHint = 1 << 30

// RunQueue executes one benchmark run on q. cfg.Queue is only recorded.
func RunQueue(ctx context.Context, q queue.Queue[WorkItem], cfg Config, rep Reporter) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rep == nil {
		rep = nopReporter{}
	}

	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Timeout)
		defer cancelTimeout()
	}

	r := &run{
		cfg:   cfg,
		q:     q,
		rep:   rep,
		total: uint64(cfg.TotalItems()),
		start: barrier.New(cfg.Producers + cfg.Consumers),
	}
	if cfg.ProgressInterval > 0 && cfg.Consumers > 0 {
		t, err := tick.New(cfg.tickerKind(), cfg.ProgressInterval)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		defer t.Stop()
		r.progress = t
	}

	res := &Result{
		Config:    cfg,
		Queue:     cfg.queueKind(),
		Producers: make([]ProducerResult, cfg.Producers),
		Consumers: make([]ConsumerResult, cfg.Consumers),
	}

	g, gctx := errgroup.WithContext(ctx)
	stop, release, err := cancel.New(gctx, cfg.cancelerKind())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	defer release()
	r.stop = stop

	begin := time.Now()
	for i := range res.Producers {
		g.Go(r.unit(RoleProducer, i, func() { r.produce(gctx, i, &res.Producers[i]) }))
	}
	for i := range res.Consumers {
		g.Go(r.unit(RoleConsumer, i, func() { r.consume(gctx, i, &res.Consumers[i]) }))
	}

	err = g.Wait()
	res.Elapsed = time.Since(begin)
	if err != nil {
		return res, err
	}

	if claimed := r.claimed.Load(); claimed != r.total {
		return res, fmt.Errorf("%w: claimed %d of %d items: %w", ErrIncomplete, claimed, r.total, context.Cause(ctx))
	}
	return res, nil
}

type run struct {
	cfg      Config
	q        queue.Queue[WorkItem]
	rep      Reporter
	total    uint64
	start    *barrier.Barrier
	stop     cancel.Canceler
	progress tick.Ticker // consumer 0 only

	claimed atomic.Uint64
}

// unit wraps a producer or consumer body: optional CPU pinning and
// conversion of a panic into an error for the errgroup.
func (r *run) unit(role Role, id int, body func()) func() error {
	tag := unitTag{role, id}
	return func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error(tag, "unit panicked", "panic", rec)
				err = fmt.Errorf("%w: %s: %v", ErrUnitPanicked, tag, rec)
			}
		}()

		if r.cfg.PinCPUs {
			cpu := id
			if role == RoleConsumer {
				cpu += r.cfg.Producers
			}
			unpin, perr := affinity.Pin(cpu)
			defer unpin()
			if perr != nil {
				log.Warn(tag, "CPU pinning failed, running on a locked thread only", "err", perr)
			}
		}

		body()
		return nil
	}
}

func (r *run) produce(ctx context.Context, id int, out *ProducerResult) {
	tag := unitTag{RoleProducer, id}
	out.ID = id
	r.rep.UnitWaiting(RoleProducer, id)
	if err := r.start.Wait(ctx); err != nil {
		log.Debug(tag, "start aborted", "err", err)
		return
	}

	begin := time.Now()
	var seq int64
	for ; seq < r.cfg.ItemsPerProducer; seq++ {
		if seq&stopCheckMask == 0 && r.stop.Done() {
			break
		}
		r.q.Push(WorkItem{
			ProducerID:   id,
			ConsumerID:   Unclaimed,
			Seq:          seq,
			EnqueueNanos: tick.Nanotime(),
		})
	}
	out.Elapsed = time.Since(begin)
	out.Pushed = seq

	log.Debug(tag, "finished", "pushed", seq, "elapsed", out.Elapsed)
	r.rep.ProducerDone(id, out.Elapsed)
}

func (r *run) consume(ctx context.Context, id int, out *ConsumerResult) {
	tag := unitTag{RoleConsumer, id}
	out.ID = id
	r.rep.UnitWaiting(RoleConsumer, id)
	if err := r.start.Wait(ctx); err != nil {
		log.Debug(tag, "start aborted", "err", err)
		return
	}

	var progress tick.Ticker
	if id == 0 {
		progress = r.progress
	}
	if !r.cfg.DiscardItems && r.total > 0 {
		out.Items = make([]WorkItem, 0, r.total/uint64(r.cfg.Consumers)+1)
	}

	begin := time.Now()
	for r.claimed.Load() != r.total {
		if r.stop.Done() {
			break
		}

		if item, ok := r.q.TryPop(); ok {
			r.claimed.Add(1)
			item.Claim(id, tick.Nanotime())
			out.Latency.Add(item.LatencyNanos)
			if !r.cfg.DiscardItems {
				out.Items = append(out.Items, item)
			}
		}

		if progress != nil && progress.Tick() {
			r.rep.Progress(r.claimed.Load(), r.total)
		}
	}
	out.Elapsed = time.Since(begin)
	out.Claimed = out.Latency.Count

	log.Debug(tag, "finished", "claimed", out.Claimed, "elapsed", out.Elapsed)
	r.rep.ConsumerDone(id, out.Elapsed, out.Claimed)
}
