package arena

import (
	"errors"
	"sync"
)

// ErrExhausted is returned by Table.Create when every slot is in use.
var ErrExhausted = errors.New("arena: table exhausted")

// Table indexes live arenas by a small integer id, the same shape
// jobtable.Slot.Arena()/SetArena() already expects (spec.md §6 "per-frame
// and per-group scratch memory", bound to a job or group by id rather than
// by pointer so a Slot stays a flat, copyable-by-value record).
type Table struct {
	mu     sync.Mutex
	arenas []*Arena
	inUse  []bool
}

// NewTable builds a table with room for capacity concurrently live arenas.
func NewTable(capacity int) *Table {
	return &Table{
		arenas: make([]*Arena, capacity),
		inUse:  make([]bool, capacity),
	}
}

// Create allocates a new arena of the given capacity and NUMA node
// preference, returning a 1-biased id (0 means "no arena") suitable for
// jobtable.Slot.SetArena.
func (t *Table) Create(capacity, node int) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, used := range t.inUse {
		if !used {
			t.inUse[i] = true
			t.arenas[i] = Init(capacity, node)
			return uint32(i) + 1, nil
		}
	}
	return 0, ErrExhausted
}

// Get resolves id (as stored by SetArena) back to its Arena, or nil if id
// is 0 ("no arena") or stale.
func (t *Table) Get(id uint32) *Arena {
	if id == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := int(id - 1)
	if idx < 0 || idx >= len(t.arenas) || !t.inUse[idx] {
		return nil
	}
	return t.arenas[idx]
}

// Destroy frees id's arena and returns its slot to the free list.
func (t *Table) Destroy(id uint32) {
	if id == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := int(id - 1)
	if idx < 0 || idx >= len(t.arenas) || !t.inUse[idx] {
		return
	}
	t.arenas[idx].Free()
	t.arenas[idx] = nil
	t.inUse[idx] = false
}
