package arena_test

import (
	"testing"

	"github.com/momentics/wsched/arena"
	"github.com/stretchr/testify/require"
)

func TestAllocReturnsDistinctNonOverlappingSlices(t *testing.T) {
	a := arena.Init(4096, -1)
	defer a.Free()

	x := a.Alloc(64)
	y := a.Alloc(64)
	require.Len(t, x, 64)
	require.Len(t, y, 64)

	x[0] = 0xAA
	y[0] = 0xBB
	require.EqualValues(t, 0xAA, x[0], "writing into y must not alias x")
}

func TestAllocGrowsIntoNewBlockPastCapacity(t *testing.T) {
	// Init floors capacity at 4096, so the first block is 4096 bytes
	// regardless of the value passed here; the first allocation below
	// leaves too little room for the second to fit, forcing growth into a
	// chained block instead of panicking or truncating.
	a := arena.Init(64, -1)
	defer a.Free()

	first := a.Alloc(4090)
	require.Len(t, first, 4090)
	second := a.Alloc(64)
	require.Len(t, second, 64)
	require.GreaterOrEqual(t, a.Used(), 4090+64)
}

func TestAllocAlignedRespectsAlignment(t *testing.T) {
	a := arena.Init(4096, -1)
	defer a.Free()

	_ = a.Alloc(3) // put the cursor at an arbitrary offset
	buf := a.AllocAligned(16, 64)
	require.Len(t, buf, 16)
}

func TestMarkRestoreRewindsAllocationPoint(t *testing.T) {
	a := arena.Init(4096, -1)
	defer a.Free()

	m := a.Mark()
	a.Alloc(128)
	a.Alloc(256)
	require.GreaterOrEqual(t, a.Used(), 384)

	a.Restore(m)
	require.Equal(t, 0, a.Used())

	// The arena must still be usable after Restore.
	buf := a.Alloc(16)
	require.Len(t, buf, 16)
}

func TestResetKeepsFirstBlockDropsRest(t *testing.T) {
	a := arena.Init(64, -1)
	defer a.Free()

	a.Alloc(4090)
	a.Alloc(64) // forces growth into a second block, per the 4096-byte floor
	require.Greater(t, a.Used(), 0)

	a.Reset()
	require.Equal(t, 0, a.Used())

	buf := a.Alloc(16)
	require.Len(t, buf, 16)
}

func TestTableCreateGetDestroy(t *testing.T) {
	tbl := arena.NewTable(2)

	id, err := tbl.Create(4096, -1)
	require.NoError(t, err)
	require.NotZero(t, id)

	got := tbl.Get(id)
	require.NotNil(t, got)

	tbl.Destroy(id)
	require.Nil(t, tbl.Get(id), "Get() after Destroy() must return nil")
}

func TestTableExhausted(t *testing.T) {
	tbl := arena.NewTable(1)
	_, err := tbl.Create(4096, -1)
	require.NoError(t, err)

	_, err = tbl.Create(4096, -1)
	require.ErrorIs(t, err, arena.ErrExhausted)
}

func TestTableGetZeroIDIsNoArena(t *testing.T) {
	tbl := arena.NewTable(1)
	require.Nil(t, tbl.Get(0))
}
