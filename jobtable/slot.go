package jobtable

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// inlineFanout is the number of dependent slot indices a Slot can hold
// without allocating the overflow buffer (spec §3: "capped children (e.g.
// 6) is acceptable").
const inlineFanout = 6

// Func is user job code. workerID is the id of the worker currently
// running it (a job can run on a different worker each time it is
// re-submitted after a Yield, so this is resolved at execution time, not
// capturable at Schedule time); data is the opaque argument passed
// verbatim.
type Func func(workerID int32, data any)

// CooperativeFunc is wrapped by the scheduler so a Yield result re-enqueues
// the job instead of blocking the worker (spec §4.G).
type CooperativeFunc func(workerID int32, data any) CooperativeSignal

// Slot is the fixed-size record described in spec §3. Its address is
// stable for the slot's lifetime; only Generation, State and the fields
// below change as the slot is reused.
type Slot struct {
	// index is this slot's position in its owning Table, fixed for the
	// slot's lifetime so it can report its own current Handle without the
	// caller having to thread one through every call.
	index uint32

	generation atomic.Uint32
	state      atomic.Uint32

	// incomingDeps is the unmet-dependency fan-in counter. A job is Ready
	// iff this reaches zero and the slot is not Free (spec §3).
	incomingDeps atomic.Int32

	fn     Func
	coopFn CooperativeFunc
	data   any
	name   string

	priority Priority

	outInline    [inlineFanout]uint32
	outInlineLen atomic.Int32
	// overflow holds dependent indices beyond inlineFanout. Guarded by
	// overflowMu rather than made lock-free: appends here are rare (wide
	// fan-out DAGs only) and always happen before the prerequisite
	// completes, never concurrently with the completion-time scan (spec
	// §4.F's ordering discipline guarantees that happens-before).
	overflowMu sync.Mutex
	overflow   *queue.Queue

	group  uint32 // index into the group table; 0 means none
	parent Handle
	arena  uint32 // opaque arena/back-reference id; 0 means none

	createdAt   int64
	startedAt   int64
	completedAt int64
	workerID    int32
}

// reset clears a slot for reuse. Called by the table only while the slot is
// Free and not yet handed out, so no synchronization is needed beyond the
// generation bump that publishes the new handle.
func (s *Slot) reset() {
	s.incomingDeps.Store(0)
	s.fn = nil
	s.coopFn = nil
	s.data = nil
	s.name = ""
	s.priority = PriorityNormal
	s.outInlineLen.Store(0)
	s.overflowMu.Lock()
	s.overflow = nil
	s.overflowMu.Unlock()
	s.group = 0
	s.parent = NoHandle
	s.arena = 0
	s.createdAt = 0
	s.startedAt = 0
	s.completedAt = 0
	s.workerID = -1
}

// State returns the slot's current lifecycle state.
func (s *Slot) State() State { return State(s.state.Load()) }

// Generation returns the slot's current generation counter.
func (s *Slot) Generation() uint32 { return s.generation.Load() }

// addDependent appends a dependent slot index, growing into the overflow
// buffer once the inline array is exhausted.
func (s *Slot) addDependent(idx uint32) {
	n := s.outInlineLen.Load()
	if int(n) < inlineFanout {
		if s.outInlineLen.CompareAndSwap(n, n+1) {
			s.outInline[n] = idx
			return
		}
		// Lost the race for this inline slot; fall through to overflow
		// rather than retry-loop indefinitely under heavy fan-out.
	}
	s.overflowMu.Lock()
	if s.overflow == nil {
		s.overflow = queue.New()
	}
	s.overflow.Add(idx)
	s.overflowMu.Unlock()
}

// dependents returns every dependent slot index currently recorded. Called
// only after the prerequisite's state has been published as Completed, so
// the acquire-load of outInlineLen observes every addDependent that
// happened-before (spec §4.F step 2).
func (s *Slot) dependents() []uint32 {
	n := int(s.outInlineLen.Load())
	if n > inlineFanout {
		n = inlineFanout
	}
	out := make([]uint32, 0, n+4)
	out = append(out, s.outInline[:n]...)

	s.overflowMu.Lock()
	if s.overflow != nil {
		for i := 0; i < s.overflow.Length(); i++ {
			out = append(out, s.overflow.Get(i).(uint32))
		}
	}
	s.overflowMu.Unlock()
	return out
}
