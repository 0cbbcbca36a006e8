//go:build amd64

package queue

// cpuRelax executes PAUSE.
// Implemented in relax_amd64.s
func cpuRelax()
