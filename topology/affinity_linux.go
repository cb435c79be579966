//go:build linux

package topology

import "golang.org/x/sys/unix"

// PinCurrentThread pins the calling OS thread to the given logical CPUs via
// sched_setaffinity, replacing the teacher's cgo pthread_setaffinity_np
// binding (affinity/affinity_linux.go, deleted — see DESIGN.md) with the
// pure-Go golang.org/x/sys/unix syscall wrapper. The caller must have
// already called runtime.LockOSThread: affinity is a per-OS-thread
// property, and an unlocked goroutine can migrate to a different thread
// right after this call returns.
func PinCurrentThread(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, c := range cpus {
		set.Set(c)
	}
	return unix.SchedSetaffinity(0, &set)
}
