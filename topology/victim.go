package topology

// Rand is a xorshift32 PRNG, grounded on original_source's wc_random_next
// (thread_pool.c) — the original scheduler seeds one per worker from the
// thread id and a timestamp; VictimSelector does the same with NewRand.
// Not safe for concurrent use: each worker owns exactly one.
type Rand struct{ state uint32 }

// NewRand seeds a generator; seed must be non-zero (xorshift32 has a fixed
// point at zero).
func NewRand(seed uint32) *Rand {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return &Rand{state: seed}
}

func (r *Rand) Next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Intn returns a pseudo-random value in [0, n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint32(n))
}

// VictimSelector implements the three-tier steal-target policy (spec §4.H,
// SPEC_FULL.md §3 NUMA-aware victim selection): a thief picks another
// worker on its own node 70% of the time, a worker on the best-bandwidth
// remote node 25% of the time, and a worker on any other node the
// remaining 5%, falling back to uniform selection across all other workers
// when the topology has only one node.
type VictimSelector struct {
	topo        *Topology
	workerNode  []int   // worker id -> node id
	nodeWorkers [][]int // node id -> worker ids on that node
	rng         *Rand
	self        int
}

// NewVictimSelector builds a selector for worker id `self`, given the node
// assignment AssignWorkers produced. The total worker count is passed to
// each Select call.
func NewVictimSelector(topo *Topology, workerNodeAssign []int, self int, seed uint32) *VictimSelector {
	maxNode := 0
	for _, n := range topo.Nodes {
		if n.ID > maxNode {
			maxNode = n.ID
		}
	}
	nodeWorkers := make([][]int, maxNode+1)
	for w, node := range workerNodeAssign {
		nodeWorkers[node] = append(nodeWorkers[node], w)
	}
	return &VictimSelector{
		topo:        topo,
		workerNode:  workerNodeAssign,
		nodeWorkers: nodeWorkers,
		rng:         NewRand(seed),
		self:        self,
	}
}

// Select returns the next victim worker id to try stealing from, or -1 if
// there is no other worker at all.
func (v *VictimSelector) Select(workerCount int) int {
	if workerCount <= 1 {
		return -1
	}
	myNode := v.workerNode[v.self]
	roll := v.rng.Intn(100)

	switch {
	case roll < 70:
		if victim, ok := v.pickFrom(v.nodeWorkers[myNode]); ok {
			return victim
		}
	case roll < 95:
		for _, remote := range v.topo.RemoteRank(myNode) {
			if remote >= len(v.nodeWorkers) {
				continue
			}
			if victim, ok := v.pickFrom(v.nodeWorkers[remote]); ok {
				return victim
			}
		}
	}
	// 5% tier, or any tier above that found no eligible candidate: pick
	// uniformly among every worker but self.
	victim := v.rng.Intn(workerCount - 1)
	if victim >= v.self {
		victim++
	}
	return victim
}

// pickFrom chooses a random worker from candidates, excluding self.
func (v *VictimSelector) pickFrom(candidates []int) (int, bool) {
	filtered := candidates[:0:0]
	for _, c := range candidates {
		if c != v.self {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return 0, false
	}
	return filtered[v.rng.Intn(len(filtered))], true
}
