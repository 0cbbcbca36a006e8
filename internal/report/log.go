// Package report renders benchmark runs: live events through the logger,
// and finished results as text, JSON, or a comparison table.
package report

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/randomizedcoder/injector-bench/internal/harness"
	"github.com/randomizedcoder/injector-bench/internal/log"
)

type unit struct {
	role harness.Role
	id   int
}

func (u unit) String() string {
	return fmt.Sprintf("%s-%d", u.role, u.id)
}

// Log is a harness.Reporter that writes events to a Logger.
// Barrier arrivals go out at debug level, everything else at info.
type Log struct {
	l *log.Logger
}

var _ harness.Reporter = (*Log)(nil)

// NewLog creates a Log reporter. A nil logger means log.Default().
func NewLog(l *log.Logger) *Log {
	if l == nil {
		l = log.Default()
	}
	return &Log{l: l}
}

func (r *Log) UnitWaiting(role harness.Role, id int) {
	r.l.Debug(unit{role, id}, "waiting at start barrier")
}

func (r *Log) ProducerDone(id int, elapsed time.Duration) {
	r.l.Info(unit{harness.RoleProducer, id}, "producer done", "elapsed", elapsed)
}

func (r *Log) ConsumerDone(id int, elapsed time.Duration, claimed int64) {
	r.l.Info(unit{harness.RoleConsumer, id}, "consumer done",
		"elapsed", elapsed,
		"claimed", humanize.Comma(claimed))
}

func (r *Log) Progress(claimed, total uint64) {
	var pct float64
	if total > 0 {
		pct = 100 * float64(claimed) / float64(total)
	}
	r.l.Info(nil, "progress",
		"claimed", humanize.Comma(int64(claimed)),
		"total", humanize.Comma(int64(total)),
		"pct", humanize.FtoaWithDigits(pct, 1))
}
