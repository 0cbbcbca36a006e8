//go:build linux

package affinity

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Supported reports whether Pin can restrict threads to a CPU.
const Supported = true

func pin(cpu int) (restore func() error, err error) {
	var saved unix.CPUSet
	// pid 0 is the calling thread
	if err := unix.SchedGetaffinity(0, &saved); err != nil {
		return nil, fmt.Errorf("affinity: get mask: %w", err)
	}
	target := pick(cpusOf(&saved), cpu)

	var set unix.CPUSet
	set.Set(target)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("affinity: pin to cpu %d: %w", target, err)
	}
	return func() error {
		if err := unix.SchedSetaffinity(0, &saved); err != nil {
			return fmt.Errorf("affinity: restore mask: %w", err)
		}
		return nil
	}, nil
}

// Current returns the CPUs the calling thread may run on.
func Current() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("affinity: get mask: %w", err)
	}
	return cpusOf(&set), nil
}

func cpusOf(set *unix.CPUSet) []int {
	cpus := make([]int, 0, set.Count())
	for i := 0; i < 8*int(unsafe.Sizeof(*set)); i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus
}
