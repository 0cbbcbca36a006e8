package harness

import (
	"errors"
	"fmt"
)

// ErrVerify is wrapped by every delivery check failure.
var ErrVerify = errors.New("harness: verification failed")

// Verify checks that the run delivered every item exactly once.
//
// With items kept it also checks each claimed item: a known producer, a
// sequence number in range, no (producer, seq) pair claimed twice, the
// claiming consumer recorded, and a non-negative latency. With
// DiscardItems only the counts are compared.
func (r *Result) Verify() error {
	total := r.TotalItems()
	if pushed := r.Pushed(); pushed != total {
		return fmt.Errorf("%w: pushed %d of %d items", ErrVerify, pushed, total)
	}
	if claimed := r.Claimed(); claimed != total {
		return fmt.Errorf("%w: claimed %d of %d items", ErrVerify, claimed, total)
	}
	if r.Config.DiscardItems {
		return nil
	}

	per := r.Config.ItemsPerProducer
	seen := make([]bool, total)
	for _, c := range r.Consumers {
		if int64(len(c.Items)) != c.Claimed {
			return fmt.Errorf("%w: consumer %d kept %d items but claimed %d", ErrVerify, c.ID, len(c.Items), c.Claimed)
		}
		for _, it := range c.Items {
			switch {
			case it.ProducerID < 0 || it.ProducerID >= r.Config.Producers:
				return fmt.Errorf("%w: consumer %d claimed item from unknown producer %d", ErrVerify, c.ID, it.ProducerID)
			case it.Seq < 0 || it.Seq >= per:
				return fmt.Errorf("%w: producer %d seq %d out of range [0,%d)", ErrVerify, it.ProducerID, it.Seq, per)
			case it.ConsumerID != c.ID:
				return fmt.Errorf("%w: item (%d,%d) held by consumer %d but stamped %d", ErrVerify, it.ProducerID, it.Seq, c.ID, it.ConsumerID)
			case it.LatencyNanos < 0:
				return fmt.Errorf("%w: item (%d,%d) has negative latency %d", ErrVerify, it.ProducerID, it.Seq, it.LatencyNanos)
			}

			idx := int64(it.ProducerID)*per + it.Seq
			if seen[idx] {
				return fmt.Errorf("%w: item (%d,%d) claimed twice", ErrVerify, it.ProducerID, it.Seq)
			}
			seen[idx] = true
		}
	}
	// Counts match and there are no duplicates, so every item was seen.
	return nil
}

// VerifyOrder checks that every consumer claimed each producer's items in
// increasing sequence order. This holds for FIFO backends only.
func (r *Result) VerifyOrder() error {
	for _, c := range r.Consumers {
		last := make(map[int]int64, r.Config.Producers)
		for _, it := range c.Items {
			if prev, ok := last[it.ProducerID]; ok && it.Seq <= prev {
				return fmt.Errorf("%w: consumer %d claimed producer %d seq %d after %d", ErrVerify, c.ID, it.ProducerID, it.Seq, prev)
			}
			last[it.ProducerID] = it.Seq
		}
	}
	return nil
}
