// Package affinity pins the calling goroutine to an OS thread and CPU.
package affinity

import "runtime"

// Pin locks the calling goroutine to its OS thread and, where supported,
// restricts that thread to one CPU of the set it may already run on: the
// cpu-th allowed CPU, wrapping around.
//
// unpin puts the thread's previous mask back and then unlocks it. If the
// mask cannot be restored the thread stays locked, and the runtime retires
// it when the goroutine exits. A failure to pin leaves the mask untouched
// and the goroutine locked until unpin, and is reported as err.
func Pin(cpu int) (unpin func(), err error) {
	runtime.LockOSThread()
	restore, err := pin(cpu)
	return func() {
		if restore != nil && restore() != nil {
			return
		}
		runtime.UnlockOSThread()
	}, err
}

// pick returns the cpu-th entry of allowed, wrapping around. A negative
// cpu selects the first entry.
func pick(allowed []int, cpu int) int {
	cpu = max(cpu, 0)
	if len(allowed) == 0 {
		return cpu
	}
	return allowed[cpu%len(allowed)]
}
