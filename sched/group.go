package sched

import (
	"github.com/momentics/wsched/atomic32"
	"github.com/momentics/wsched/depgraph"
	"github.com/momentics/wsched/jobtable"
)

// GroupHandle names a job group; re-exported so callers don't need to
// import depgraph directly.
type GroupHandle = depgraph.GroupHandle

// GroupCreate starts a barrier expected to cover `remaining` members (spec
// §4.G "group_create").
func (s *Scheduler) GroupCreate(remaining int32) (GroupHandle, error) {
	return s.groups.Create(remaining)
}

// GroupAdd makes h a member of g (spec §4.G "group_create/add"). Valid
// only while h has not yet completed.
func (s *Scheduler) GroupAdd(g GroupHandle, h jobtable.Handle) error {
	return s.engine.AddToGroup(h, g)
}

// GroupSubmit records continuation (allocated via ScheduleContinuation) to
// run once g's member count reaches zero (spec §4.G
// "group_create/add/wait/submit/destroy"). continuation is left Pending
// with incoming_deps == 1 until then, so it never runs independently of the
// barrier.
//
// If every member had already completed by the time this is called, the
// cascade already ran with no continuation to push, so GroupSubmit resolves
// that race itself: it re-checks Remaining after recording the handle and,
// if the group is already empty, readies and pushes continuation directly.
// continuation's incoming_deps only ever reaches zero once regardless of
// which side wins, so this can never double-push.
func (s *Scheduler) GroupSubmit(callerWorker int32, g GroupHandle, continuation jobtable.Handle) {
	s.groups.SetContinuation(g, continuation)
	if s.groups.Remaining(g) <= 0 {
		if slot, ok := s.jobs.Slot(continuation); ok && slot.AddIncoming(-1) == 0 {
			slot.SetState(jobtable.Ready)
			s.pool.PushReady(int(callerWorker), continuation)
		}
	}
}

// GroupWait blocks (helping with other runnable work meanwhile) until g's
// remaining-member count reaches zero. callerWorker follows Wait's
// convention (see sched/scheduler.go).
func (s *Scheduler) GroupWait(callerWorker int32, g GroupHandle) {
	for s.groups.Remaining(g) > 0 {
		if !s.helpOnce(callerWorker) {
			atomic32.Pause()
		}
	}
}

// GroupDestroy retires g, invalidating any outstanding GroupHandle. Call
// only after GroupWait (or equivalent external knowledge that every member
// has completed) to avoid the lifetime hazard spec §4.F calls out.
func (s *Scheduler) GroupDestroy(g GroupHandle) {
	s.groups.Destroy(g)
}
