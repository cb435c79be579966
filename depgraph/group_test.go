package depgraph_test

import (
	"testing"

	"github.com/momentics/wsched/depgraph"
	"github.com/momentics/wsched/jobtable"
	"github.com/stretchr/testify/require"
)

func TestGroupHandleGoesStaleAfterDestroy(t *testing.T) {
	groups := depgraph.NewGroupTable(4)
	g, err := groups.Create(3)
	require.NoError(t, err)

	groups.Destroy(g)

	require.Zero(t, groups.Remaining(g), "a destroyed group's handle must resolve to nothing, not its last count")

	g2, err := groups.Create(1)
	require.NoError(t, err)
	require.Equal(t, g.Index, g2.Index, "the freed slot should be reused")
	require.NotEqual(t, g.Generation, g2.Generation, "reuse must bump the generation so the old handle stays stale")
}

func TestGroupTableExhausted(t *testing.T) {
	groups := depgraph.NewGroupTable(1)
	_, err := groups.Create(0)
	require.NoError(t, err)

	_, err = groups.Create(0)
	require.ErrorIs(t, err, depgraph.ErrGroupExhausted)
}

func TestGroupAddIncrementsRemaining(t *testing.T) {
	groups := depgraph.NewGroupTable(2)
	g, err := groups.Create(0)
	require.NoError(t, err)

	groups.Add(g, 1)
	groups.Add(g, 1)
	require.EqualValues(t, 2, groups.Remaining(g))
}

func TestSetContinuationOnStaleHandleIsNoOp(t *testing.T) {
	groups := depgraph.NewGroupTable(1)
	g, err := groups.Create(1)
	require.NoError(t, err)
	groups.Destroy(g)

	// Must not panic even though g is now stale.
	groups.SetContinuation(g, jobtable.Handle{Index: 0, Generation: 1})
}
