package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/injector-bench/internal/cancel"
	"github.com/randomizedcoder/injector-bench/internal/config"
	"github.com/randomizedcoder/injector-bench/internal/log"
	"github.com/randomizedcoder/injector-bench/internal/queue"
	"github.com/randomizedcoder/injector-bench/internal/tick"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())

	hc, err := c.Harness()
	require.NoError(t, err)
	require.Equal(t, 4, hc.Producers)
	require.Equal(t, 2, hc.Consumers)
	require.Equal(t, int64(10_000_000), hc.ItemsPerProducer)
	require.Equal(t, int64(40_000_000), hc.TotalItems())
	require.Equal(t, queue.KindInjector, hc.Queue)
	require.Equal(t, tick.KindAtomic, hc.Ticker)
	require.True(t, c.Run.Verify)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
run:
  producers: 8
  consumers: 4
  items_per_producer: 1000
  queue: Ring
  timeout: 30s
  progress_interval: 250ms
  discard_items: true
output:
  format: json
`)
	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", c.Log.Level)
	require.Equal(t, "text", c.Log.Format, "unset keys keep defaults")
	require.Equal(t, 8, c.Run.Producers)
	require.Equal(t, 30*time.Second, c.Run.Timeout)
	require.Equal(t, 250*time.Millisecond, c.Run.ProgressInterval)
	require.True(t, c.Run.DiscardItems)
	require.Equal(t, "json", c.Output.Format)

	hc, err := c.Harness()
	require.NoError(t, err)
	require.Equal(t, queue.KindRing, hc.Queue)
}

func TestLoad_Empty(t *testing.T) {
	c, err := config.Load(writeFile(t, ""))
	require.NoError(t, err)
	require.Equal(t, config.Default(), c)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "run:\n  producer: 3\n"))
	require.Error(t, err, "unknown keys are rejected")

	_, err = config.Load(writeFile(t, "run:\n  producers: many\n"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c := config.Default()
	err := c.ApplyEnv(env(map[string]string{
		"INJECTOR_PRODUCERS":     "16",
		"INJECTOR_CONSUMERS":     "8",
		"INJECTOR_ITEMS":         "1_000_000",
		"INJECTOR_QUEUE":         "sharded",
		"INJECTOR_TIMEOUT":       "1m",
		"INJECTOR_PIN_CPUS":      "true",
		"INJECTOR_VERIFY":        "false",
		"INJECTOR_LOG_FORMAT":    "json",
		"INJECTOR_OUTPUT":        "json",
		"UNRELATED_PRODUCERS":    "1",
		"INJECTOR_DISCARD_ITEMS": "1",
		"INJECTOR_MAX_MEMORY":    "2GiB",
	}))
	require.NoError(t, err)

	require.Equal(t, 16, c.Run.Producers)
	require.Equal(t, 8, c.Run.Consumers)
	require.Equal(t, int64(1_000_000), c.Run.ItemsPerProducer)
	require.Equal(t, "sharded", c.Run.Queue)
	require.Equal(t, time.Minute, c.Run.Timeout)
	require.True(t, c.Run.PinCPUs)
	require.True(t, c.Run.DiscardItems)
	require.False(t, c.Run.Verify)
	require.Equal(t, "json", c.Log.Format)
	require.Equal(t, "json", c.Output.Format)
	require.Equal(t, "2GiB", c.Run.MaxMemory)
	require.NoError(t, c.Validate())
}

func TestApplyEnv_Errors(t *testing.T) {
	c := config.Default()
	err := c.ApplyEnv(env(map[string]string{
		"INJECTOR_PRODUCERS": "four",
		"INJECTOR_TIMEOUT":   "soon",
	}))
	require.ErrorContains(t, err, "INJECTOR_PRODUCERS")
	require.ErrorContains(t, err, "INJECTOR_TIMEOUT")
	require.Equal(t, 4, c.Run.Producers)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"unknown queue", func(c *config.Config) { c.Run.Queue = "deque" }},
		{"unknown ticker", func(c *config.Config) { c.Run.Ticker = "sundial" }},
		{"no consumers", func(c *config.Config) { c.Run.Consumers = 0 }},
		{"negative items", func(c *config.Config) { c.Run.ItemsPerProducer = -1 }},
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"bad output", func(c *config.Config) { c.Output.Format = "csv" }},
		{"unknown canceler", func(c *config.Config) { c.Run.Canceler = "signal" }},
		{"bad max memory", func(c *config.Config) { c.Run.MaxMemory = "lots" }},
		{"ring over max memory", func(c *config.Config) { c.Run.Queue = "ring" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Default()
			tc.mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestHarness_MemoryLimit(t *testing.T) {
	testCases := []struct {
		name      string
		maxMemory string
		queue     string
		discard   bool
		want      int64
		wantErr   bool
	}{
		{"default injector", config.DefaultMaxMemory, "injector", false, 4 << 30, false},
		{"sharded at default size", config.DefaultMaxMemory, "sharded", false, 0, true},
		{"ring at default size", config.DefaultMaxMemory, "ring", false, 0, true},
		{"ring discarding", config.DefaultMaxMemory, "ring", true, 4 << 30, false},
		{"channel discarding", config.DefaultMaxMemory, "channel", true, 4 << 30, false},
		{"disabled", "0", "sharded", false, 0, false},
		{"empty", "", "ring", false, 0, false},
		{"decimal units", "16 GB", "ring", false, 16_000_000_000, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Default()
			c.Run.MaxMemory = tc.maxMemory
			c.Run.Queue = tc.queue
			c.Run.DiscardItems = tc.discard

			hc, err := c.Harness()
			if tc.wantErr {
				require.ErrorContains(t, err, "limit")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, hc.MemoryLimit)
		})
	}
}

func TestHarness_Canceler(t *testing.T) {
	c := config.Default()
	hc, err := c.Harness()
	require.NoError(t, err)
	require.Equal(t, cancel.KindAtomic, hc.Canceler)

	require.NoError(t, c.ApplyEnv(env(map[string]string{"INJECTOR_CANCELER": "Context"})))
	hc, err = c.Harness()
	require.NoError(t, err)
	require.Equal(t, cancel.KindContext, hc.Canceler)
}

func TestLogger(t *testing.T) {
	c := config.Default()
	c.Log.Level = "warn"
	c.Log.Format = "JSON"

	var buf bytes.Buffer
	l, err := c.Logger(&buf)
	require.NoError(t, err)
	require.Equal(t, log.LevelWarn, l.Level())

	l.Info(nil, "hidden")
	l.Warn(nil, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)

	c.Log.Level = "loud"
	_, err = c.Logger(&buf)
	require.Error(t, err)
}
