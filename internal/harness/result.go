package harness

import (
	"math"
	"slices"
	"time"

	"github.com/randomizedcoder/injector-bench/internal/queue"
)

// ProducerResult is what one producer reports.
type ProducerResult struct {
	ID      int
	Elapsed time.Duration // barrier release to last push
	Pushed  int64
}

// ConsumerResult is what one consumer reports.
type ConsumerResult struct {
	ID      int
	Elapsed time.Duration // barrier release to stop
	Claimed int64
	Latency LatencyAccumulator
	Items   []WorkItem // nil with Config.DiscardItems
}

// Result aggregates one run.
type Result struct {
	Config    Config
	Queue     queue.Kind
	Producers []ProducerResult
	Consumers []ConsumerResult
	Elapsed   time.Duration // spawn to join
}

// TotalItems returns the number of items the run was configured to move.
func (r *Result) TotalItems() int64 {
	return r.Config.TotalItems()
}

// Pushed returns the number of items producers pushed.
func (r *Result) Pushed() int64 {
	var n int64
	for _, p := range r.Producers {
		n += p.Pushed
	}
	return n
}

// Claimed returns the number of items consumers claimed.
func (r *Result) Claimed() int64 {
	var n int64
	for _, c := range r.Consumers {
		n += c.Claimed
	}
	return n
}

// ClaimCounts returns the claimed count of each consumer, by ID.
func (r *Result) ClaimCounts() []int64 {
	counts := make([]int64, len(r.Consumers))
	for i, c := range r.Consumers {
		counts[i] = c.Claimed
	}
	return counts
}

// Throughput returns claimed items per second over the whole run.
func (r *Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Claimed()) / r.Elapsed.Seconds()
}

// Items returns every claimed item across all consumers.
func (r *Result) Items() []WorkItem {
	var n int
	for _, c := range r.Consumers {
		n += len(c.Items)
	}
	items := make([]WorkItem, 0, n)
	for _, c := range r.Consumers {
		items = append(items, c.Items...)
	}
	return items
}

// Latency summarizes push-to-claim latency over the whole run.
// Percentiles are only available when items were kept.
func (r *Result) Latency() LatencyStats {
	var acc LatencyAccumulator
	for _, c := range r.Consumers {
		acc.Merge(c.Latency)
	}
	stats := acc.Stats()

	if r.Config.DiscardItems || acc.Count == 0 {
		return stats
	}
	lat := make([]int64, 0, acc.Count)
	for _, c := range r.Consumers {
		for _, it := range c.Items {
			lat = append(lat, it.LatencyNanos)
		}
	}
	slices.Sort(lat)
	stats.P50 = time.Duration(percentile(lat, 0.50))
	stats.P99 = time.Duration(percentile(lat, 0.99))
	stats.HasPercentiles = true
	return stats
}

// percentile returns the nearest-rank percentile of sorted values.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	return sorted[min(max(rank, 0), len(sorted)-1)]
}

// LatencyAccumulator keeps running latency totals without storing samples.
type LatencyAccumulator struct {
	Count int64
	Sum   int64
	Min   int64
	Max   int64
}

// Add records one latency sample in nanoseconds.
func (a *LatencyAccumulator) Add(nanos int64) {
	if a.Count == 0 || nanos < a.Min {
		a.Min = nanos
	}
	if nanos > a.Max {
		a.Max = nanos
	}
	a.Count++
	a.Sum += nanos
}

// Merge folds o into a.
func (a *LatencyAccumulator) Merge(o LatencyAccumulator) {
	if o.Count == 0 {
		return
	}
	if a.Count == 0 || o.Min < a.Min {
		a.Min = o.Min
	}
	if o.Max > a.Max {
		a.Max = o.Max
	}
	a.Count += o.Count
	a.Sum += o.Sum
}

// Stats converts the totals to durations.
func (a LatencyAccumulator) Stats() LatencyStats {
	if a.Count == 0 {
		return LatencyStats{}
	}
	return LatencyStats{
		Count: a.Count,
		Min:   time.Duration(a.Min),
		Max:   time.Duration(a.Max),
		Mean:  time.Duration(a.Sum / a.Count),
	}
}

// LatencyStats is a latency summary.
type LatencyStats struct {
	Count          int64
	Min, Mean, Max time.Duration
	P50, P99       time.Duration
	HasPercentiles bool
}
