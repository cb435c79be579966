// Package jobtable is the slab of job slots described in spec §3 and §4.C:
// a pre-sized array with stable addresses, generation-tagged handles, and
// lock-free allocation/retirement. Grounded on original_source's JobHandle
// (a packed u64 of slot index + generation, see job.h) and on the teacher's
// slab-style pool (pool/objpool.go) for the free-list idiom, here built
// directly on deque.GlobalQueue rather than re-deriving a separate
// lock-free stack.
package jobtable

import "fmt"

// Handle names a job slot. The zero Handle is reserved as "none" (spec §3):
// every slot's generation counter starts at 1 on first use, so a genuine
// handle never has Generation == 0.
type Handle struct {
	Index      uint32
	Generation uint32
}

// NoHandle is the reserved "none" value.
var NoHandle = Handle{}

// IsNone reports whether h is the reserved "none" handle.
func (h Handle) IsNone() bool { return h == NoHandle }

func (h Handle) String() string {
	if h.IsNone() {
		return "job<none>"
	}
	return fmt.Sprintf("job<%d#%d>", h.Index, h.Generation)
}

// Priority classifies a job for the global queue's two-tier drain order
// (spec §4.E step 3). Local-deque jobs are never reordered by priority —
// only jobs that overflow to the global queue are tier-classified
// (SPEC_FULL.md §4, "Job priority tiers").
type Priority uint8

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)
