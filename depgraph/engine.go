package depgraph

import (
	"errors"

	"github.com/momentics/wsched/jobtable"
)

// ErrAlreadyComplete is returned by AddDependency when either side has
// already retired, matching spec §4.F: "valid only while both jobs are not
// Completed".
var ErrAlreadyComplete = errors.New("depgraph: prerequisite or dependent already complete")

// Engine is the dependency bookkeeping layer bound to one jobtable.Table
// and one GroupTable. It has no knowledge of workers or fibers: completion
// hands ready dependents to the caller-supplied push function, which the
// worker loop (spec §4.E) wires to "push to my local deque, or the global
// queue if full".
type Engine struct {
	jobs   *jobtable.Table
	groups *GroupTable
}

// New binds an Engine to the given job and group tables.
func New(jobs *jobtable.Table, groups *GroupTable) *Engine {
	return &Engine{jobs: jobs, groups: groups}
}

// AddDependency records that dependent must not run until prerequisite
// completes (spec §4.F add_dependency). The append-then-increment order
// matters: a prerequisite that completes concurrently walks its
// outgoing_deps with an acquire load of the length after the state
// transition, so it is guaranteed to observe this dependent even if the
// increment below races the completion cascade.
func (e *Engine) AddDependency(dependent, prerequisite jobtable.Handle) error {
	dep, ok := e.jobs.Slot(dependent)
	if !ok {
		return ErrAlreadyComplete
	}
	pre, ok := e.jobs.Slot(prerequisite)
	if !ok {
		return ErrAlreadyComplete
	}
	if dep.State() == jobtable.Completed || pre.State() == jobtable.Completed {
		return ErrAlreadyComplete
	}
	pre.AddDependent(dependent.Index)
	dep.AddIncoming(1)
	return nil
}

// AddToGroup makes h a member of group g: it bumps g's remaining count and
// records the membership on h's slot so Complete can find its way back to
// the group at completion time.
func (e *Engine) AddToGroup(h jobtable.Handle, g GroupHandle) error {
	s, ok := e.jobs.Slot(h)
	if !ok {
		return ErrAlreadyComplete
	}
	if _, resolved := e.groups.resolve(g); !resolved {
		return errors.New("depgraph: group handle is stale")
	}
	s.SetGroup(g.Index + 1)
	e.groups.Add(g, 1)
	return nil
}

// SetMembership marks h as a member of g without changing g's remaining
// count, for callers (ParallelFor) that already sized the group correctly
// at Create time and would otherwise race GroupWait: incrementing
// remaining once per scheduled job risks a concurrent waiter observing
// remaining hit zero between two Add calls, before every member job has
// even been submitted.
func (e *Engine) SetMembership(h jobtable.Handle, g GroupHandle) error {
	s, ok := e.jobs.Slot(h)
	if !ok {
		return ErrAlreadyComplete
	}
	if _, resolved := e.groups.resolve(g); !resolved {
		return errors.New("depgraph: group handle is stale")
	}
	s.SetGroup(g.Index + 1)
	return nil
}

// Push receives a handle whose fan-in counter just reached zero, so it is
// now Ready and must be enqueued somewhere runnable.
type Push func(h jobtable.Handle)

// Complete runs the completion cascade for h (spec §4.F steps 1-4): it
// publishes h as Completed, decrements every recorded dependent's fan-in
// counter and pushes any that reach zero, then — if h belongs to a group —
// decrements the group's remaining count and pushes its continuation job
// once the group empties.
//
// The caller must have already run h's job body; Complete only does the
// bookkeeping that follows completion, not execution.
func (e *Engine) Complete(h jobtable.Handle, push Push) {
	s, ok := e.jobs.Slot(h)
	if !ok {
		return
	}
	s.SetState(jobtable.Completed)

	for _, depIdx := range s.Dependents() {
		depSlot := e.jobs.SlotAt(depIdx)
		if depSlot.AddIncoming(-1) == 0 {
			depSlot.SetState(jobtable.Ready)
			push(jobtable.Handle{Index: depIdx, Generation: depSlot.Generation()})
		}
	}

	group := s.Group()
	if group == 0 {
		return
	}
	gh := GroupHandle{Index: group - 1, Generation: e.groups.groups[group-1].generation.Load()}
	remaining, continuation, ok := e.groups.complete(gh)
	if !ok {
		return
	}
	if remaining == 0 && !continuation.IsNone() {
		// The continuation was allocated parked (incoming_deps == 1, never
		// self-decremented — see Scheduler.ScheduleContinuation) precisely so
		// that only this decrement, gated on the group truly emptying, can
		// ready it: a plain Schedule would make it Ready immediately and let
		// it run before the barrier closes.
		if contSlot, ok := e.jobs.Slot(continuation); ok && contSlot.AddIncoming(-1) == 0 {
			contSlot.SetState(jobtable.Ready)
			push(continuation)
		}
	}
}

// SpawnChild allocates a job with parent as its sole prerequisite and
// returns its handle already linked (spec §4.F "Hierarchical spawn"). The
// child inherits parent's arena if it has none of its own; it is left in
// Pending state with incoming_deps == 1 until parent completes, at which
// point Complete's cascade promotes it to Ready and pushes it.
func (e *Engine) SpawnChild(parent jobtable.Handle, fn jobtable.Func, data any) (jobtable.Handle, error) {
	parentSlot, ok := e.jobs.Slot(parent)
	if !ok {
		return jobtable.NoHandle, ErrAlreadyComplete
	}
	child, err := e.jobs.Alloc()
	if err != nil {
		return jobtable.NoHandle, err
	}
	childSlot, _ := e.jobs.Slot(child)
	childSlot.SetFn(fn)
	childSlot.SetData(data)
	childSlot.SetParent(parent)
	childSlot.SetArena(parentSlot.Arena())
	childSlot.SetIncomingDeps(0)

	if err := e.AddDependency(child, parent); err != nil {
		// Parent retired between Alloc and AddDependency: the child has no
		// real prerequisite left, so it is immediately runnable.
		childSlot.SetState(jobtable.Ready)
	}
	return child, nil
}
