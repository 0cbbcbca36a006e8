// Package config loads benchmark settings from YAML and the environment.
//
// Precedence, lowest first: Default, the YAML file, INJECTOR_* environment
// variables, then command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"

	"github.com/randomizedcoder/injector-bench/internal/cancel"
	"github.com/randomizedcoder/injector-bench/internal/harness"
	"github.com/randomizedcoder/injector-bench/internal/log"
	"github.com/randomizedcoder/injector-bench/internal/queue"
	"github.com/randomizedcoder/injector-bench/internal/tick"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INJECTOR_"

// DefaultMaxMemory bounds the estimated heap of one run. The default
// injector workload fits; bounded backends at the same size do not.
const DefaultMaxMemory = "4GiB"

// Config is the full configuration of the benchmark binary.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Run    RunConfig    `yaml:"run"`
	Output OutputConfig `yaml:"output"`
}

type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

type RunConfig struct {
	Producers        int           `yaml:"producers"`
	Consumers        int           `yaml:"consumers"`
	ItemsPerProducer int64         `yaml:"items_per_producer"`
	Queue            string        `yaml:"queue"`
	Timeout          time.Duration `yaml:"timeout"`
	PinCPUs          bool          `yaml:"pin_cpus"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	Ticker           string        `yaml:"ticker"`
	Canceler         string        `yaml:"canceler"`
	DiscardItems     bool          `yaml:"discard_items"`
	// MaxMemory rejects runs estimated to need more heap, e.g. "4GiB".
	// Empty or "0" disables the check.
	MaxMemory string `yaml:"max_memory"`
	// Verify checks exactly-once delivery after the run.
	Verify bool `yaml:"verify"`
}

type OutputConfig struct {
	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the stock benchmark: 4 producers, 2 consumers and
// 10,000,000 items per producer on the injector.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Run: RunConfig{
			Producers:        4,
			Consumers:        2,
			ItemsPerProducer: 10_000_000,
			Queue:            string(queue.KindInjector),
			ProgressInterval: tick.DefaultInterval,
			Ticker:           string(tick.KindAtomic),
			Canceler:         string(cancel.KindAtomic),
			MaxMemory:        DefaultMaxMemory,
			Verify:           true,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load reads path over Default. Unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	c := Default()
	dec := yaml.NewDecoder(f, yaml.Strict())
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// ApplyEnv overrides c from INJECTOR_* variables found by lookup,
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int64) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.ParseInt(strings.ReplaceAll(v, "_", ""), 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	producers, consumers := int64(c.Run.Producers), int64(c.Run.Consumers)
	num("PRODUCERS", &producers)
	num("CONSUMERS", &consumers)
	num("ITEMS", &c.Run.ItemsPerProducer)
	c.Run.Producers, c.Run.Consumers = int(producers), int(consumers)

	str("QUEUE", &c.Run.Queue)
	str("TICKER", &c.Run.Ticker)
	str("CANCELER", &c.Run.Canceler)
	str("MAX_MEMORY", &c.Run.MaxMemory)
	dur("TIMEOUT", &c.Run.Timeout)
	dur("PROGRESS", &c.Run.ProgressInterval)
	flag("PIN_CPUS", &c.Run.PinCPUs)
	flag("DISCARD_ITEMS", &c.Run.DiscardItems)
	flag("VERIFY", &c.Run.Verify)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("OUTPUT", &c.Output.Format)

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Harness converts the run section into a harness.Config.
func (c *Config) Harness() (harness.Config, error) {
	kind, err := queue.ParseKind(c.Run.Queue)
	if err != nil {
		return harness.Config{}, fmt.Errorf("config: %w", err)
	}
	ticker, err := tick.ParseKind(c.Run.Ticker)
	if err != nil {
		return harness.Config{}, fmt.Errorf("config: %w", err)
	}
	canceler, err := cancel.ParseKind(c.Run.Canceler)
	if err != nil {
		return harness.Config{}, fmt.Errorf("config: %w", err)
	}
	limit, err := parseBytes(c.Run.MaxMemory)
	if err != nil {
		return harness.Config{}, fmt.Errorf("config: max_memory: %w", err)
	}

	hc := harness.Config{
		Producers:        c.Run.Producers,
		Consumers:        c.Run.Consumers,
		ItemsPerProducer: c.Run.ItemsPerProducer,
		Queue:            kind,
		Timeout:          c.Run.Timeout,
		PinCPUs:          c.Run.PinCPUs,
		ProgressInterval: c.Run.ProgressInterval,
		Ticker:           ticker,
		Canceler:         canceler,
		DiscardItems:     c.Run.DiscardItems,
		MemoryLimit:      limit,
	}
	if err := hc.Validate(); err != nil {
		return harness.Config{}, fmt.Errorf("config: %w", err)
	}
	return hc, nil
}

func parseBytes(s string) (int64, error) {
	if s = strings.TrimSpace(s); s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%q is too large", s)
	}
	return int64(n), nil
}

// Logger builds the logger the log section describes.
func (c *Config) Logger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	l, err := log.New(w, strings.ToLower(c.Log.Format))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	l.SetLevel(level)
	return l, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.Harness(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	switch strings.ToLower(c.Output.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}
	return nil
}
