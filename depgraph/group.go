// Package depgraph implements component F: dependency bookkeeping between
// jobtable slots and the group barrier described in spec §4.F. Grounded on
// original_source's WC_TaskGroup-style remaining-count barrier (task.c's
// completion walk) and the teacher's generation-tagged handle idiom
// (jobtable.Handle) reused here for group identity so a stale GroupHandle
// fails the same way a stale job Handle does.
package depgraph

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/momentics/wsched/jobtable"
)

// ErrGroupExhausted mirrors jobtable.ErrExhausted for the group slab.
var ErrGroupExhausted = errors.New("depgraph: group table exhausted")

// GroupHandle names a job group. The zero value is never issued by
// GroupTable.Create (generation starts at 1), so it is safe to use as "no group".
type GroupHandle struct {
	Index      uint32
	Generation uint32
}

func (h GroupHandle) IsNone() bool { return h == GroupHandle{} }

type group struct {
	generation atomic.Uint32
	remaining  atomic.Int32
	// continuation is an atomic.Pointer rather than a plain field because
	// SetContinuation (called by whoever submitted the barrier) can race
	// with the last member's completion cascade reading it; jobtable.Handle
	// itself is a comparable value type, so the pointer is only ever swapped
	// wholesale, never mutated in place.
	continuation atomic.Pointer[jobtable.Handle]
	live         atomic.Bool
}

var noContinuation = jobtable.NoHandle

// GroupTable is a fixed-size slab of groups, allocated and retired the same
// way jobtable.Table manages job slots, but without a lock-free free-list:
// groups are created and destroyed far less often than jobs (spec §4.F
// "explicit destruction avoids lifetime hazards"), so a mutex-guarded
// linear scan for a free slot is the right tradeoff of simplicity against
// contention.
type GroupTable struct {
	mu     sync.Mutex
	groups []group
}

// NewGroupTable allocates a table that can hold up to capacity live groups.
func NewGroupTable(capacity int) *GroupTable {
	if capacity < 1 {
		capacity = 1
	}
	gt := &GroupTable{groups: make([]group, capacity)}
	for i := range gt.groups {
		gt.groups[i].generation.Store(1)
	}
	return gt
}

// Create reserves a group slot with the given expected member count and
// returns its handle. remaining may be zero (an empty group that is
// already done); the caller is responsible for calling Destroy once the
// group's continuation (if any) has been observed to run.
func (gt *GroupTable) Create(remaining int32) (GroupHandle, error) {
	gt.mu.Lock()
	defer gt.mu.Unlock()
	for i := range gt.groups {
		g := &gt.groups[i]
		if !g.live.Load() {
			g.remaining.Store(remaining)
			g.continuation.Store(&noContinuation)
			g.live.Store(true)
			return GroupHandle{Index: uint32(i), Generation: g.generation.Load()}, nil
		}
	}
	return GroupHandle{}, ErrGroupExhausted
}

func (gt *GroupTable) resolve(h GroupHandle) (*group, bool) {
	if h.IsNone() || int(h.Index) >= len(gt.groups) {
		return nil, false
	}
	g := &gt.groups[h.Index]
	if !g.live.Load() || g.generation.Load() != h.Generation {
		return nil, false
	}
	return g, true
}

// SetContinuation records the job submitted once the group's member count
// reaches zero. Safe to call any time before the group is destroyed,
// including after it has already reached zero: the completion cascade only
// pushes a continuation set before the last member's decrement observes it,
// so a caller racing the barrier's close must fall back to checking
// Remaining itself and pushing the continuation directly (see
// sched.Scheduler.GroupSubmit).
func (gt *GroupTable) SetContinuation(h GroupHandle, continuation jobtable.Handle) {
	if g, ok := gt.resolve(h); ok {
		g.continuation.Store(&continuation)
	}
}

// Add increments the group's remaining-member count, used when a job is
// added to an already-created group (spec §4.G "group_create/add").
func (gt *GroupTable) Add(h GroupHandle, n int32) {
	if g, ok := gt.resolve(h); ok {
		g.remaining.Add(n)
	}
}

// Remaining returns the group's current outstanding-member count.
func (gt *GroupTable) Remaining(h GroupHandle) int32 {
	if g, ok := gt.resolve(h); ok {
		return g.remaining.Load()
	}
	return 0
}

// complete fetch-subs one from the group's remaining count and returns the
// new value along with its continuation handle, for the dependency
// engine's completion cascade (spec §4.F step 4).
func (gt *GroupTable) complete(h GroupHandle) (remaining int32, continuation jobtable.Handle, ok bool) {
	g, resolved := gt.resolve(h)
	if !resolved {
		return 0, jobtable.NoHandle, false
	}
	return g.remaining.Add(-1), *g.continuation.Load(), true
}

// Destroy retires a group, bumping its generation so outstanding
// GroupHandles become stale. Callers must not call Destroy while jobs may
// still complete into the group (spec §4.F: destruction is explicit and
// the caller's responsibility).
func (gt *GroupTable) Destroy(h GroupHandle) {
	gt.mu.Lock()
	defer gt.mu.Unlock()
	if g, ok := gt.resolve(h); ok {
		g.live.Store(false)
		g.generation.Add(1)
	}
}
