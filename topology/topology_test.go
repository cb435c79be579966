package topology_test

import (
	"testing"

	"github.com/momentics/wsched/topology"
)

func TestSyntheticSplitsCPUsAcrossNodes(t *testing.T) {
	topo := topology.Synthetic(4, 16)
	if topo.NodeCount() != 4 {
		t.Fatalf("NodeCount() = %d, want 4", topo.NodeCount())
	}
	total := 0
	for _, n := range topo.Nodes {
		total += len(n.CPUs)
	}
	if total != 16 {
		t.Fatalf("CPUs across nodes = %d, want 16", total)
	}
}

func TestSyntheticFloorsNodeCountAtOne(t *testing.T) {
	topo := topology.Synthetic(0, 0)
	if topo.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1", topo.NodeCount())
	}
}

func TestAssignWorkersCoversEveryWorkerExactlyOnce(t *testing.T) {
	topo := topology.Synthetic(3, 12)
	assign := topo.AssignWorkers(9)
	if len(assign) != 9 {
		t.Fatalf("AssignWorkers() returned %d entries, want 9", len(assign))
	}
	seen := make([]bool, 9)
	for w, node := range assign {
		if node < 0 || node >= 3 {
			t.Fatalf("worker %d assigned to out-of-range node %d", w, node)
		}
		seen[w] = true
	}
	for w, ok := range seen {
		if !ok {
			t.Fatalf("worker %d never assigned a node", w)
		}
	}
}

func TestRemoteRankExcludesSelf(t *testing.T) {
	topo := topology.Synthetic(4, 16)
	rank := topo.RemoteRank(1)
	if len(rank) != 3 {
		t.Fatalf("RemoteRank(1) returned %d nodes, want 3", len(rank))
	}
	for _, n := range rank {
		if n == 1 {
			t.Fatal("RemoteRank(1) must not include node 1 itself")
		}
	}
}

func TestVictimSelectorReturnsMinusOneWithoutPeers(t *testing.T) {
	topo := topology.Synthetic(1, 1)
	assign := topo.AssignWorkers(1)
	sel := topology.NewVictimSelector(topo, assign, 0, 1)
	if got := sel.Select(1); got != -1 {
		t.Fatalf("Select(1) = %d, want -1 with no other worker", got)
	}
}

// TestVictimSelectorFavorsLocalNode is the statistical check for spec §8
// property 6: over many draws, a thief should land on a same-node victim
// roughly 70% of the time (the documented local-tier weight), never a
// self-steal, and always a valid worker id.
func TestVictimSelectorFavorsLocalNode(t *testing.T) {
	const nodes, workersPerNode, workers = 4, 4, 16
	topo := topology.Synthetic(nodes, workers)
	assign := topo.AssignWorkers(workers)
	sel := topology.NewVictimSelector(topo, assign, 0, 12345)

	const trials = 20000
	local := 0
	for i := 0; i < trials; i++ {
		victim := sel.Select(workers)
		if victim < 0 || victim >= workers {
			t.Fatalf("Select() returned out-of-range worker id %d", victim)
		}
		if victim == 0 {
			t.Fatal("Select() must never return self as victim")
		}
		if assign[victim] == assign[0] {
			local++
		}
	}
	ratio := float64(local) / float64(trials)
	if ratio < 0.60 {
		t.Fatalf("local-steal ratio = %.2f, want >= 0.60 (70%% local tier, 5%% uniform fallback can land local too)", ratio)
	}
}
