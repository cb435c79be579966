package atomic32

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// CacheLinePad is embedded between hot fields (e.g. a deque's top/bottom
// indices) that are written by different goroutines, to avoid false sharing.
// Grounded on the 64-byte padding used throughout the examples pack for
// Chase-Lev deques and MPMC rings.
type CacheLinePad [64]byte

// MaxIdleSpins is a suggested idle-spin bound chosen from CPU features:
// platforms with cheap SIMD/atomic hardware primitives can afford to spin
// a little longer before the cost of a scheduler round-trip is worth
// paying; golang.org/x/sys/cpu gives us that signal without resorting to
// cgo or inline assembly. The worker loop does not read this value: its
// bound is worker.Config.MaxIdleSpins, which defaults to a fixed 1000.
var MaxIdleSpins = func() int {
	if cpu.X86.HasSSE2 || cpu.ARM64.HasATOMICS {
		return 1000
	}
	return 200
}()

// Pause is a cooperative yield hint used by the worker loop's idle-spin
// phase and by CAS retry loops in deque and depgraph. It never blocks:
// callers that need to actually sleep use their own condition variable
// (see worker.Pool's sleep/wake rendezvous).
func Pause() {
	runtime.Gosched()
}
