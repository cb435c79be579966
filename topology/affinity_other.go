//go:build !linux

package topology

// PinCurrentThread is a no-op on platforms without sched_setaffinity.
// Worker goroutines still get NUMA-aware victim selection from a
// synthesized topology; Detect reads only Linux sysfs, so on these
// platforms it returns a single synthetic node. Physical core pinning is
// unavailable.
func PinCurrentThread(cpus []int) error {
	return nil
}
