//go:build !amd64

package queue

// cpuRelax is a no-op where no spin-wait hint is wired up.
func cpuRelax() {}
