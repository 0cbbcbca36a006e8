// Package combined holds benchmarks that run several components together:
// the consumer hot loop (stop check, progress tick and TryPop on one
// iteration), the full harness on every queue backend, and the injector
// against the raw go-lock-free-ring sharded ring.
//
// These capture the cumulative cost of a consumer iteration, which the
// per-package micro-benchmarks measure only in isolation.
package combined
