//go:build !amd64

package tick_test

import (
	"errors"
	"testing"
	"time"

	"github.com/randomizedcoder/injector-bench/internal/tick"
)

func TestTSC_NotSupported(t *testing.T) {
	if _, err := tick.New(tick.KindTSC, time.Second); !errors.Is(err, tick.ErrTSCNotSupported) {
		t.Errorf("expected ErrTSCNotSupported, got %v", err)
	}
}
