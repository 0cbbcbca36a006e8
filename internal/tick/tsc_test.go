//go:build amd64

package tick_test

import (
	"testing"
	"time"

	"github.com/randomizedcoder/injector-bench/internal/tick"
)

func TestTSCTicker(t *testing.T) {
	ticker, err := tick.NewTSCCalibrated(testInterval)
	if err != nil {
		t.Fatalf("NewTSCCalibrated: %v", err)
	}
	defer ticker.Stop()

	// Should not tick immediately
	if ticker.Tick() {
		t.Error("expected Tick() = false immediately after creation")
	}

	time.Sleep(testInterval + 20*time.Millisecond)

	if !ticker.Tick() {
		t.Error("expected Tick() = true after interval elapsed")
	}

	ticker.Reset()
	if ticker.Tick() {
		t.Error("expected Tick() = false after Reset()")
	}
}

func TestCalibrateTSC(t *testing.T) {
	cyclesPerNs, err := tick.CalibrateTSC()
	if err != nil {
		t.Fatalf("CalibrateTSC: %v", err)
	}

	// Sanity check: should be between 0.5 and 10 cycles/ns
	// (500MHz to 10GHz CPUs)
	if cyclesPerNs < 0.5 || cyclesPerNs > 10 {
		t.Errorf("CalibrateTSC() = %f, expected between 0.5 and 10", cyclesPerNs)
	}

	t.Logf("Calibrated TSC: %.2f cycles/ns (%.2f GHz equivalent)", cyclesPerNs, cyclesPerNs)
}

func TestNewTSC(t *testing.T) {
	ticker, err := tick.NewTSC(time.Second, 3.0)
	if err != nil {
		t.Fatalf("NewTSC: %v", err)
	}
	if ticker.CyclesPerNs() != 3.0 {
		t.Errorf("expected CyclesPerNs() = 3.0, got %f", ticker.CyclesPerNs())
	}

	if _, err := tick.NewTSC(time.Second, 0); err == nil {
		t.Error("expected error for zero cycles per ns")
	}
}
