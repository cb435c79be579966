package sched

import (
	"github.com/momentics/wsched/arena"
	"github.com/momentics/wsched/jobtable"
)

// ArenaHandle names a scratch arena bound to a job or group (spec.md §6
// "Arena: init/alloc/alloc_aligned/reset/free ... used for per-frame and
// per-group scratch memory").
type ArenaHandle = uint32

// CreateArena allocates a capacity-byte scratch arena on the given NUMA
// node (node < 0 for no preference) and returns a handle a job can carry
// via BindArena.
func (s *Scheduler) CreateArena(capacity, node int) (ArenaHandle, error) {
	return s.arenas.Create(capacity, node)
}

// Arena resolves h to the live *arena.Arena, or nil if h is zero or stale.
func (s *Scheduler) Arena(h ArenaHandle) *arena.Arena {
	return s.arenas.Get(h)
}

// DestroyArena frees h's backing memory. Callers must ensure no job still
// references h (the arena contract has no refcounting, matching
// original_source's arena_destroy/mi_heap_delete bulk-free semantics).
func (s *Scheduler) DestroyArena(h ArenaHandle) {
	s.arenas.Destroy(h)
}

// BindArena attaches arena h to job handle j, so SpawnChild calls made from
// inside j's body inherit it (spec §4.F "child inherits parent's arena").
func (s *Scheduler) BindArena(j jobtable.Handle, h ArenaHandle) error {
	slot, ok := s.jobs.Slot(j)
	if !ok {
		return NewError(ErrCodeStaleHandle, "job handle is stale")
	}
	slot.SetArena(h)
	return nil
}
