package harness

// Unclaimed is the ConsumerID of an item no consumer has claimed yet.
const Unclaimed = -1

// WorkItem is one unit of work passed from a producer to a consumer.
//
// Everything but ConsumerID and LatencyNanos is fixed at push time. Those
// two are written once, by the consumer that claims the item.
type WorkItem struct {
	ProducerID   int
	ConsumerID   int
	Seq          int64 // 0-based, increasing per producer
	EnqueueNanos int64 // tick.Nanotime at push
	LatencyNanos int64 // claim time - EnqueueNanos; 0 until claimed
}

// Claim records the claiming consumer and the push-to-claim latency.
// now must come from the same clock as EnqueueNanos.
func (w *WorkItem) Claim(consumer int, now int64) {
	w.ConsumerID = consumer
	w.LatencyNanos = max(now-w.EnqueueNanos, 0)
}

// Claimed reports whether a consumer has claimed the item.
func (w *WorkItem) Claimed() bool {
	return w.ConsumerID != Unclaimed
}
