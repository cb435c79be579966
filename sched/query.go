package sched

import "github.com/momentics/wsched/jobtable"

// IsComplete reports whether h has finished, treating a stale handle as
// complete (spec §6 "is_complete", spec §7 "Staleness ... silently treated
// as Completed by all query/wait operations").
func (s *Scheduler) IsComplete(h jobtable.Handle) bool {
	if s.jobs.IsStale(h) {
		return true
	}
	slot, ok := s.jobs.Slot(h)
	if !ok {
		return true
	}
	switch slot.State() {
	case jobtable.Completed, jobtable.Cancelled:
		return true
	default:
		return false
	}
}

// JobTableCapacity returns the fixed job-slot slab size, for callers that
// need to cycle a slot's generation deliberately (e.g. a stale-handle test).
func (s *Scheduler) JobTableCapacity() int {
	return s.jobs.Cap()
}

// JobTiming reports h's recorded start/completion timestamps (UnixNano),
// for tests and scenario runners that verify dependency-order invariants
// (spec §8 property 2: "the start timestamp of D is not earlier than the
// completion timestamp of P"). ok is false if h is stale.
func (s *Scheduler) JobTiming(h jobtable.Handle) (started, completed int64, ok bool) {
	slot, found := s.jobs.Slot(h)
	if !found {
		return 0, 0, false
	}
	return slot.StartedAt(), slot.CompletedAt(), true
}

// The scheduler has no CurrentWorkerID or CurrentJobHandle query: Go has no
// goroutine-local "current fiber" to read them from. A job body receives
// the worker id it runs on as the workerID argument of its
// Func/CooperativeFunc. Its own job handle is not passed to the body, and
// there is no way to obtain it from inside the body.
