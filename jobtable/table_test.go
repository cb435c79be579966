package jobtable_test

import (
	"testing"

	"github.com/momentics/wsched/jobtable"
)

func TestAllocReturnsDistinctHandles(t *testing.T) {
	tbl := jobtable.New(4)
	a, err := tbl.Alloc()
	if err != nil {
		t.Fatalf("Alloc() error: %v", err)
	}
	b, err := tbl.Alloc()
	if err != nil {
		t.Fatalf("Alloc() error: %v", err)
	}
	if a == b {
		t.Fatalf("Alloc() returned the same handle twice: %v", a)
	}
	if slot, ok := tbl.Slot(a); !ok || slot.State() != jobtable.Pending {
		t.Fatalf("newly allocated slot should be Pending, ok=%v state=%v", ok, slot.State())
	}
}

func TestAllocExhausted(t *testing.T) {
	tbl := jobtable.New(2)
	if _, err := tbl.Alloc(); err != nil {
		t.Fatalf("Alloc() 1 error: %v", err)
	}
	if _, err := tbl.Alloc(); err != nil {
		t.Fatalf("Alloc() 2 error: %v", err)
	}
	if _, err := tbl.Alloc(); err != jobtable.ErrExhausted {
		t.Fatalf("Alloc() 3 error = %v, want ErrExhausted", err)
	}
}

func TestRetireBumpsGenerationAndFreesSlot(t *testing.T) {
	tbl := jobtable.New(1)
	h, err := tbl.Alloc()
	if err != nil {
		t.Fatalf("Alloc() error: %v", err)
	}
	tbl.Retire(h, jobtable.Completed)

	if !tbl.IsStale(h) {
		t.Fatal("handle should be stale after Retire")
	}

	h2, err := tbl.Alloc()
	if err != nil {
		t.Fatalf("Alloc() after Retire error: %v", err)
	}
	if h2.Index != h.Index {
		t.Fatalf("expected the retired slot to be reused, got index %d want %d", h2.Index, h.Index)
	}
	if h2.Generation == h.Generation {
		t.Fatalf("reused slot did not bump generation: %d", h2.Generation)
	}
}

func TestSlotRejectsStaleGeneration(t *testing.T) {
	tbl := jobtable.New(1)
	h, _ := tbl.Alloc()
	tbl.Retire(h, jobtable.Cancelled)

	if _, ok := tbl.Slot(h); ok {
		t.Fatal("Slot() should reject a handle whose generation has been superseded")
	}
}

func TestIncomingDepsGatesReadiness(t *testing.T) {
	tbl := jobtable.New(1)
	h, _ := tbl.Alloc()
	slot, ok := tbl.Slot(h)
	if !ok {
		t.Fatal("Slot() not found")
	}

	slot.SetIncomingDeps(2)
	if got := slot.AddIncoming(-1); got != 1 {
		t.Fatalf("AddIncoming(-1) = %d, want 1", got)
	}
	if got := slot.AddIncoming(-1); got != 0 {
		t.Fatalf("AddIncoming(-1) = %d, want 0", got)
	}
}

func TestDependentsSpillsIntoOverflow(t *testing.T) {
	tbl := jobtable.New(1)
	h, _ := tbl.Alloc()
	slot, _ := tbl.Slot(h)

	const n = 20 // well past inlineFanout
	for i := uint32(0); i < n; i++ {
		slot.AddDependent(i)
	}
	got := slot.Dependents()
	if len(got) != n {
		t.Fatalf("Dependents() returned %d entries, want %d", len(got), n)
	}
	seen := make(map[uint32]bool, n)
	for _, idx := range got {
		seen[idx] = true
	}
	for i := uint32(0); i < n; i++ {
		if !seen[i] {
			t.Fatalf("Dependents() missing index %d", i)
		}
	}
}
