package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/randomizedcoder/injector-bench/internal/harness"
)

// WriteText writes a human-readable summary of res to w.
func WriteText(w io.Writer, res *harness.Result) error {
	cfg := res.Config
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "queue:\t%s\n", res.Queue)
	fmt.Fprintf(tw, "producers:\t%d\n", cfg.Producers)
	fmt.Fprintf(tw, "consumers:\t%d\n", cfg.Consumers)
	fmt.Fprintf(tw, "items:\t%s (%d x %s)\n",
		humanize.Comma(res.TotalItems()), cfg.Producers, humanize.Comma(cfg.ItemsPerProducer))
	fmt.Fprintf(tw, "claimed:\t%s\n", humanize.Comma(res.Claimed()))
	fmt.Fprintf(tw, "elapsed:\t%s\n", round(res.Elapsed))
	fmt.Fprintf(tw, "throughput:\t%s\n", throughput(res))

	lat := res.Latency()
	if lat.Count > 0 {
		fmt.Fprintf(tw, "latency:\tmin %s  mean %s  max %s\n", lat.Min, lat.Mean, lat.Max)
		if lat.HasPercentiles {
			fmt.Fprintf(tw, "\tp50 %s  p99 %s\n", lat.P50, lat.P99)
		}
	}
	fmt.Fprintln(tw)

	for _, p := range res.Producers {
		fmt.Fprintf(tw, "producer %d:\tpushed %s\tin %s\n", p.ID, humanize.Comma(p.Pushed), round(p.Elapsed))
	}
	total := res.Claimed()
	for _, c := range res.Consumers {
		fmt.Fprintf(tw, "consumer %d:\tclaimed %s (%s)\tin %s\n",
			c.ID, humanize.Comma(c.Claimed), share(c.Claimed, total), round(c.Elapsed))
	}
	return tw.Flush()
}

// WriteComparison writes one table row per result, in the given order.
func WriteComparison(w io.Writer, results []*harness.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "queue\titems\telapsed\tthroughput\tp50\tp99\tspread\t")
	for _, res := range results {
		lat := res.Latency()
		p50, p99 := "-", "-"
		if lat.HasPercentiles {
			p50, p99 = lat.P50.String(), lat.P99.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			res.Queue,
			humanize.Comma(res.Claimed()),
			round(res.Elapsed),
			throughput(res),
			p50, p99,
			spread(res.ClaimCounts()),
		)
	}
	return tw.Flush()
}

func throughput(res *harness.Result) string {
	return humanize.SIWithDigits(res.Throughput(), 2, "items/s")
}

func share(n, total int64) string {
	if total == 0 {
		return "0%"
	}
	return humanize.FtoaWithDigits(100*float64(n)/float64(total), 1) + "%"
}

// spread renders the per-consumer claim counts as min/max.
func spread(counts []int64) string {
	if len(counts) == 0 {
		return "-"
	}
	lo, hi := counts[0], counts[0]
	for _, c := range counts[1:] {
		lo, hi = min(lo, c), max(hi, c)
	}
	return strings.Join([]string{humanize.Comma(lo), humanize.Comma(hi)}, "/")
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		return d.Round(time.Millisecond)
	case d > time.Millisecond:
		return d.Round(time.Microsecond)
	}
	return d
}
