package harness

import (
	"math"
	"unsafe"

	"github.com/randomizedcoder/injector-bench/internal/queue"
)

const (
	itemBytes = int64(unsafe.Sizeof(WorkItem{}))
	wordBytes = int64(unsafe.Sizeof(uintptr(0)))
)

// EstimateBytes approximates the peak heap of a run: the queue holding
// every item at once, plus the items consumers keep unless DiscardItems
// is set. Bounded backends count their full allocation.
func (c Config) EstimateBytes() int64 {
	total := c.TotalItems()
	capacity := max(min(total, maxCapacityHint), 1)

	var q int64
	switch c.queueKind() {
	case queue.KindInjector:
		q = mulSat(total, itemBytes+wordBytes) // value plus slot state
	case queue.KindList:
		q = mulSat(total, itemBytes+wordBytes) // value plus next pointer
	case queue.KindChannel:
		q = mulSat(capacity, itemBytes)
	case queue.KindRing:
		q = mulSat(pow2(capacity), itemBytes+wordBytes) // value plus sequence
	case queue.KindSharded:
		// interface slots, plus one boxed item per queued value
		q = addSat(mulSat(pow2(2*capacity), 2*wordBytes), mulSat(total, itemBytes+wordBytes))
	}

	if c.DiscardItems || total == 0 {
		return q
	}
	return addSat(q, mulSat(total+int64(c.Consumers), itemBytes))
}

func pow2(n int64) int64 {
	p := int64(2)
	for p < n && p < math.MaxInt64/2 {
		p <<= 1
	}
	return p
}

func mulSat(a, b int64) int64 {
	if a != 0 && b > math.MaxInt64/a {
		return math.MaxInt64
	}
	return a * b
}

func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
