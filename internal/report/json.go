package report

import (
	"io"

	"github.com/sugawarayuuta/sonnet"

	"github.com/randomizedcoder/injector-bench/internal/harness"
)

// Document is the JSON form of a run.
type Document struct {
	Queue            string   `json:"queue"`
	Producers        int      `json:"producers"`
	Consumers        int      `json:"consumers"`
	ItemsPerProducer int64    `json:"items_per_producer"`
	TotalItems       int64    `json:"total_items"`
	Pushed           int64    `json:"pushed"`
	Claimed          int64    `json:"claimed"`
	ElapsedNanos     int64    `json:"elapsed_ns"`
	ItemsPerSecond   float64  `json:"items_per_second"`
	ClaimCounts      []int64  `json:"claim_counts"`
	ProducerNanos    []int64  `json:"producer_elapsed_ns"`
	ConsumerNanos    []int64  `json:"consumer_elapsed_ns"`
	Latency          *Latency `json:"latency,omitempty"`
}

// Latency is the JSON form of harness.LatencyStats, in nanoseconds.
type Latency struct {
	Count int64  `json:"count"`
	Min   int64  `json:"min_ns"`
	Mean  int64  `json:"mean_ns"`
	Max   int64  `json:"max_ns"`
	P50   *int64 `json:"p50_ns,omitempty"`
	P99   *int64 `json:"p99_ns,omitempty"`
}

// NewDocument converts res to its JSON form.
func NewDocument(res *harness.Result) Document {
	doc := Document{
		Queue:            string(res.Queue),
		Producers:        res.Config.Producers,
		Consumers:        res.Config.Consumers,
		ItemsPerProducer: res.Config.ItemsPerProducer,
		TotalItems:       res.TotalItems(),
		Pushed:           res.Pushed(),
		Claimed:          res.Claimed(),
		ElapsedNanos:     res.Elapsed.Nanoseconds(),
		ItemsPerSecond:   res.Throughput(),
		ClaimCounts:      res.ClaimCounts(),
		ProducerNanos:    make([]int64, len(res.Producers)),
		ConsumerNanos:    make([]int64, len(res.Consumers)),
	}
	for i, p := range res.Producers {
		doc.ProducerNanos[i] = p.Elapsed.Nanoseconds()
	}
	for i, c := range res.Consumers {
		doc.ConsumerNanos[i] = c.Elapsed.Nanoseconds()
	}

	if lat := res.Latency(); lat.Count > 0 {
		doc.Latency = &Latency{
			Count: lat.Count,
			Min:   lat.Min.Nanoseconds(),
			Mean:  lat.Mean.Nanoseconds(),
			Max:   lat.Max.Nanoseconds(),
		}
		if lat.HasPercentiles {
			p50, p99 := lat.P50.Nanoseconds(), lat.P99.Nanoseconds()
			doc.Latency.P50, doc.Latency.P99 = &p50, &p99
		}
	}
	return doc
}

// WriteJSON writes each result as one JSON object per line.
func WriteJSON(w io.Writer, results ...*harness.Result) error {
	for _, res := range results {
		b, err := sonnet.Marshal(NewDocument(res))
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
