//go:build !linux

package affinity

// Supported reports whether Pin can restrict threads to a CPU.
const Supported = false

// pin is a no-op; the goroutine is still locked to its thread.
func pin(int) (func() error, error) { return nil, nil }

// Current is not available on this platform.
func Current() ([]int, error) { return nil, nil }
