package jobtable

import (
	"errors"

	"github.com/momentics/wsched/deque"
)

// ErrExhausted is returned by Alloc when no free slot remains (spec §7,
// "Capacity" error kind).
var ErrExhausted = errors.New("jobtable: exhausted")

// Table is the process-wide slab of job slots (spec §4.C). Default sizing
// matches spec §4.C ("4,096-65,536"); Table itself never resizes — callers
// choose a capacity up front via New.
type Table struct {
	slots []Slot
	free  *deque.GlobalQueue[uint32]
}

// New allocates a table with the given fixed capacity. Every slot starts
// Free with generation 1, so the zero Handle can never alias a live slot.
func New(capacity int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	t := &Table{
		slots: make([]Slot, capacity),
		free:  deque.NewGlobalQueue[uint32](capacity),
	}
	for i := range t.slots {
		t.slots[i].index = uint32(i)
		t.slots[i].generation.Store(1)
		t.slots[i].workerID = -1
		if !t.free.Enqueue(uint32(i)) {
			// capacity was rounded up by NewGlobalQueue, so this cannot
			// happen for i < capacity; guard left in for clarity.
			panic("jobtable: free queue undersized")
		}
	}
	return t
}

// Cap returns the table's fixed capacity.
func (t *Table) Cap() int { return len(t.slots) }

// Alloc reserves a free slot and returns its handle, with the slot reset
// and its generation already reflecting the returned handle. Returns
// ErrExhausted if no slot is free.
func (t *Table) Alloc() (Handle, error) {
	idx, ok := t.free.Dequeue()
	if !ok {
		return NoHandle, ErrExhausted
	}
	s := &t.slots[idx]
	s.reset()
	s.state.Store(uint32(Pending))
	return Handle{Index: idx, Generation: s.Generation()}, nil
}

// SlotAt returns the slot at a raw index without generation validation.
// Used by depgraph's completion cascade, where a dependent's liveness is
// already guaranteed by its own fan-in reference rather than a handle the
// caller is holding.
func (t *Table) SlotAt(idx uint32) *Slot {
	return &t.slots[idx]
}

// Slot resolves a handle to its slot pointer. ok is false if the handle is
// stale (spec §3: "stale when slot.generation != handle.generation") or
// out of range.
func (t *Table) Slot(h Handle) (*Slot, bool) {
	if h.IsNone() || int(h.Index) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[h.Index]
	if s.Generation() != h.Generation {
		return nil, false
	}
	return s, true
}

// Retire publishes a slot as Completed (or Cancelled) and returns it to the
// free list under a bumped generation, so any outstanding handle observing
// the old generation becomes stale (spec §4.C).
func (t *Table) Retire(h Handle, final State) {
	s, ok := t.Slot(h)
	if !ok {
		return
	}
	s.state.Store(uint32(final))
	s.generation.Add(1)
	t.free.Enqueue(h.Index)
}

// IsStale reports whether h no longer refers to the slot it was issued
// for — either retired and possibly reused, or never valid.
func (t *Table) IsStale(h Handle) bool {
	_, ok := t.Slot(h)
	return !ok
}
