// Command injector benchmarks the lock-free injector queue.
//
// Usage:
//
//	go run ./cmd/injector run -p 4 -c 2 -n 10000000
//	go run ./cmd/injector compare -n 1000000
//	go run ./cmd/injector run --config bench.yml --output json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/randomizedcoder/injector-bench/internal/config"
	"github.com/randomizedcoder/injector-bench/internal/harness"
	"github.com/randomizedcoder/injector-bench/internal/log"
	"github.com/randomizedcoder/injector-bench/internal/queue"
	"github.com/randomizedcoder/injector-bench/internal/report"
)

type cliTag struct{}

func (cliTag) String() string { return "cli" }

var tag cliTag

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(tag, "failed", "err", err)
		stop()
		os.Exit(1)
	}
}

// flags holds command-line overrides. Only flags the user set are applied.
type flags struct {
	configPath string
	logLevel   string
	logFormat  string
	output     string

	producers int
	consumers int
	items     int64
	queue     string
	ticker    string
	canceler  string
	maxMemory string
	timeout   time.Duration
	progress  time.Duration
	pin       bool
	discard   bool
	verify    bool
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           "injector",
		Short:         "Lock-free MPMC injector queue benchmark",
		Version:       version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "log format (text, json)")
	pf.StringVarP(&f.output, "output", "o", "", "result format (text, json)")
	pf.IntVarP(&f.producers, "producers", "p", 0, "number of producers")
	pf.IntVarP(&f.consumers, "consumers", "c", 0, "number of consumers")
	pf.Int64VarP(&f.items, "items", "n", 0, "items per producer")
	pf.StringVar(&f.ticker, "ticker", "", "progress ticker (std, batch, atomic, tsc)")
	pf.StringVar(&f.canceler, "canceler", "", "stop signal polled by units (atomic, context)")
	pf.StringVar(&f.maxMemory, "max-memory", "", "reject runs estimated above this heap size, e.g. 8GiB (0 = no limit)")
	pf.DurationVar(&f.timeout, "timeout", 0, "abort the run after this long (0 = never)")
	pf.DurationVar(&f.progress, "progress", 0, "progress report interval (0 = off)")
	pf.BoolVar(&f.pin, "pin", false, "pin every producer and consumer to its own CPU")
	pf.BoolVar(&f.discard, "discard", false, "count claims without keeping items")
	pf.BoolVar(&f.verify, "verify", true, "check exactly-once delivery after the run")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run one benchmark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runOne(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	run.Flags().StringVarP(&f.queue, "queue", "q", "", "queue backend ("+kindList()+")")

	compare := &cobra.Command{
		Use:   "compare",
		Short: "Run the same workload on every queue backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runCompare(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	root.AddCommand(run, compare)
	return root
}

// load builds the configuration: defaults, file, environment, flags.
func (f *flags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if set("output") {
		cfg.Output.Format = f.output
	}
	if set("producers") {
		cfg.Run.Producers = f.producers
	}
	if set("consumers") {
		cfg.Run.Consumers = f.consumers
	}
	if set("items") {
		cfg.Run.ItemsPerProducer = f.items
	}
	if set("queue") {
		cfg.Run.Queue = f.queue
	}
	if set("ticker") {
		cfg.Run.Ticker = f.ticker
	}
	if set("canceler") {
		cfg.Run.Canceler = f.canceler
	}
	if set("max-memory") {
		cfg.Run.MaxMemory = f.maxMemory
	}
	if set("pin") {
		cfg.Run.PinCPUs = f.pin
	}
	if set("discard") {
		cfg.Run.DiscardItems = f.discard
	}
	if set("verify") {
		cfg.Run.Verify = f.verify
	}
	if set("timeout") {
		cfg.Run.Timeout = f.timeout
	}
	if set("progress") {
		cfg.Run.ProgressInterval = f.progress
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := cfg.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	log.SetDefault(l)
	return cfg, nil
}

func runOne(ctx context.Context, w io.Writer, cfg *config.Config) error {
	hc, err := cfg.Harness()
	if err != nil {
		return err
	}
	log.Info(tag, "starting run",
		"queue", hc.Queue,
		"producers", hc.Producers,
		"consumers", hc.Consumers,
		"items", hc.TotalItems())

	res, err := harness.Run(ctx, hc, report.NewLog(log.Default()))
	if err != nil {
		if res != nil && errors.Is(err, harness.ErrIncomplete) {
			if werr := write(w, cfg, res); werr != nil {
				err = errors.Join(err, werr)
			}
		}
		return err
	}
	if err := verify(cfg, res); err != nil {
		return err
	}
	return write(w, cfg, res)
}

// runCompare checks every backend's configuration before running any, so
// an oversized bounded queue fails fast.
func runCompare(ctx context.Context, w io.Writer, cfg *config.Config) error {
	configs := make([]harness.Config, 0, len(queue.Kinds()))
	for _, kind := range queue.Kinds() {
		cfg.Run.Queue = string(kind)
		hc, err := cfg.Harness()
		if err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		configs = append(configs, hc)
	}

	var results []*harness.Result
	for _, hc := range configs {
		kind := hc.Queue
		log.Info(tag, "starting run", "queue", kind, "items", hc.TotalItems())

		res, err := harness.Run(ctx, hc, report.NewLog(log.Default()))
		if err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		if err := verify(cfg, res); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		results = append(results, res)
	}

	if strings.EqualFold(cfg.Output.Format, "json") {
		return report.WriteJSON(w, results...)
	}
	return report.WriteComparison(w, results)
}

func verify(cfg *config.Config, res *harness.Result) error {
	if !cfg.Run.Verify {
		return nil
	}
	if err := res.Verify(); err != nil {
		return err
	}
	// The sharded ring does not keep per-producer order.
	if res.Queue != queue.KindSharded {
		if err := res.VerifyOrder(); err != nil {
			return err
		}
	}
	log.Info(tag, "delivery verified", "queue", res.Queue, "claimed", res.Claimed())
	return nil
}

func write(w io.Writer, cfg *config.Config, res *harness.Result) error {
	if strings.EqualFold(cfg.Output.Format, "json") {
		return report.WriteJSON(w, res)
	}
	return report.WriteText(w, res)
}

func kindList() string {
	names := make([]string, 0, len(queue.Kinds()))
	for _, k := range queue.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}
