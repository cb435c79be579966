// Package topology discovers NUMA node layout and assigns workers to nodes,
// replacing the teacher's cgo libnuma binding (pool/numa_linux.go, deleted —
// see DESIGN.md) with a pure sysfs reader, and the original C scheduler's
// wc_pool_init_numa/wc_pool_select_numa_victim (original_source/src/system/
// thread_pool.c, task2.c's per-node thread_group_t) with the same shape
// translated to Go: a discovered node list, a worker->node assignment, and a
// weighted victim-selection policy.
package topology

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Node describes one NUMA node, carrying original_source/task2.h's
// thread_group_t fields (name, member CPUs/workers) forward instead of
// re-deriving them ad hoc at every call site (SPEC_FULL.md §4).
type Node struct {
	ID   int
	Name string
	CPUs []int

	// WorkerIDs is filled in by AssignWorkers once a worker count is known;
	// a freshly detected Topology has it empty on every node.
	WorkerIDs []int

	// MemoryAvailable is the node's free memory in bytes, read from
	// meminfo when available; zero if unknown (synthesized topology, or
	// sysfs missing the field).
	MemoryAvailable uint64

	// BandwidthScore ranks this node's estimated memory-bandwidth
	// advantage versus other nodes, higher is better-connected. Used only
	// for descriptive/metrics purposes; victim selection itself consults
	// distanceRank, which this score is derived from.
	BandwidthScore float64
}

// Topology is the detected (or synthesized) NUMA layout plus the derived
// distance ranking every worker's victim selector consults.
type Topology struct {
	Nodes []Node

	// distanceRank[i] lists every other node index ordered nearest-first,
	// mirroring /sys/devices/system/node/nodeN/distance (SPEC_FULL.md §3:
	// bandwidth-ranked remote-node selection). Synthesized topologies rank
	// the other nodes by index; for a single node each list is empty.
	distanceRank [][]int
}

const sysNodeDir = "/sys/devices/system/node"

// Detect reads /sys/devices/system/node on Linux. Any failure — the path
// missing, unreadable, or empty (non-NUMA hardware, containers, non-Linux
// platforms) — yields the single-node fallback from Synthetic, never an
// error: topology-awareness degrading to "every worker is local" is always
// a valid, if suboptimal, policy (spec §4.H "Non-goals": no requirement to
// fail without real NUMA hardware).
func Detect() *Topology {
	entries, err := os.ReadDir(sysNodeDir)
	if err != nil {
		return Synthetic(1, defaultCPUCount())
	}

	var nodes []Node
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "node") {
			continue
		}
		idx, convErr := strconv.Atoi(name[len("node"):])
		if convErr != nil {
			continue
		}
		cpus, listErr := readCPUList(filepath.Join(sysNodeDir, name, "cpulist"))
		if listErr != nil || len(cpus) == 0 {
			continue
		}
		nodes = append(nodes, Node{ID: idx, Name: name, CPUs: cpus, MemoryAvailable: readMemFree(filepath.Join(sysNodeDir, name, "meminfo"))})
	}
	if len(nodes) == 0 {
		return Synthetic(1, defaultCPUCount())
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	t := &Topology{Nodes: nodes}
	t.distanceRank = make([][]int, len(nodes))
	for i := range nodes {
		dist, distErr := readDistance(filepath.Join(sysNodeDir, fmt.Sprintf("node%d", nodes[i].ID), "distance"))
		if distErr != nil {
			t.distanceRank[i] = identityRank(len(nodes), i)
			continue
		}
		t.distanceRank[i] = rankByDistance(dist, nodes, i)
		nodes[i].BandwidthScore = bandwidthScore(dist, i)
	}
	return t
}

// readMemFree extracts "Node N MemFree:" from a NUMA node's meminfo file.
// Returns 0 if the file is missing or the field can't be parsed — callers
// treat that as "unknown", not an error.
func readMemFree(path string) uint64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		// "Node 0 MemFree:       1048576 kB"
		for i, f := range fields {
			if f == "MemFree:" && i+1 < len(fields) {
				kb, err := strconv.ParseUint(fields[i+1], 10, 64)
				if err == nil {
					return kb * 1024
				}
			}
		}
	}
	return 0
}

// bandwidthScore turns a raw sysfs distance row into a higher-is-better
// score: local access (distance to self) is excluded, and score is the
// inverse of the average distance to every other node.
func bandwidthScore(dist []int, self int) float64 {
	sum, n := 0, 0
	for i, d := range dist {
		if i == self {
			continue
		}
		sum += d
		n++
	}
	if n == 0 || sum == 0 {
		return 1.0
	}
	return 100.0 / (float64(sum) / float64(n))
}

// Synthetic builds a topology with n nodes, distributing cpuCount logical
// CPUs evenly across them. Used by Detect's fallback and directly by tests
// and the demo CLI to exercise multi-node victim selection without real
// NUMA hardware.
func Synthetic(n, cpuCount int) *Topology {
	if n < 1 {
		n = 1
	}
	if cpuCount < n {
		cpuCount = n
	}
	nodes := make([]Node, n)
	per := cpuCount / n
	cpu := 0
	for i := 0; i < n; i++ {
		count := per
		if i == n-1 {
			count = cpuCount - cpu
		}
		cpus := make([]int, count)
		for j := 0; j < count; j++ {
			cpus[j] = cpu
			cpu++
		}
		nodes[i] = Node{ID: i, Name: fmt.Sprintf("node%d", i), CPUs: cpus, BandwidthScore: 1.0}
	}
	t := &Topology{Nodes: nodes}
	t.distanceRank = make([][]int, n)
	for i := range nodes {
		t.distanceRank[i] = identityRank(n, i)
	}
	return t
}

// NodeCount returns the number of discovered (or synthesized) NUMA nodes.
func (t *Topology) NodeCount() int { return len(t.Nodes) }

// AssignWorkers maps workerCount workers onto nodes round-robin, weighted
// by each node's CPU count so a node with more cores gets proportionally
// more workers — the Go equivalent of task2.c's thread_group_t population
// loop. The returned slice's index is the worker id, its value the node id.
func (t *Topology) AssignWorkers(workerCount int) []int {
	assign := make([]int, workerCount)
	if len(t.Nodes) == 0 || workerCount == 0 {
		return assign
	}
	totalCPUs := 0
	for _, n := range t.Nodes {
		totalCPUs += len(n.CPUs)
	}
	if totalCPUs == 0 {
		totalCPUs = len(t.Nodes)
	}

	// Weighted round robin: give node i a share of workers proportional to
	// len(node.CPUs)/totalCPUs, then fill any remainder in node order.
	remaining := workerCount
	w := 0
	for i, n := range t.Nodes {
		share := workerCount * len(n.CPUs) / totalCPUs
		if i == len(t.Nodes)-1 {
			share = remaining
		}
		for k := 0; k < share && w < workerCount; k++ {
			assign[w] = n.ID
			w++
		}
		remaining -= share
	}
	for ; w < workerCount; w++ {
		assign[w] = t.Nodes[w%len(t.Nodes)].ID
	}

	for i := range t.Nodes {
		t.Nodes[i].WorkerIDs = t.Nodes[i].WorkerIDs[:0]
	}
	for workerID, nodeID := range assign {
		for i := range t.Nodes {
			if t.Nodes[i].ID == nodeID {
				t.Nodes[i].WorkerIDs = append(t.Nodes[i].WorkerIDs, workerID)
				break
			}
		}
	}
	return assign
}

// RemoteRank returns the node ids other than node, ordered nearest first.
func (t *Topology) RemoteRank(node int) []int {
	for i, n := range t.Nodes {
		if n.ID == node {
			if i < len(t.distanceRank) {
				return t.distanceRank[i]
			}
		}
	}
	return nil
}

func readCPUList(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, fmt.Errorf("topology: empty cpulist %s", path)
	}
	return parseCPUList(sc.Text())
}

// parseCPUList parses the kernel's cpulist format, e.g. "0-3,8-11".
func parseCPUList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			lo, err := strconv.Atoi(part[:dash])
			if err != nil {
				return nil, err
			}
			hi, err := strconv.Atoi(part[dash+1:])
			if err != nil {
				return nil, err
			}
			for c := lo; c <= hi; c++ {
				out = append(out, c)
			}
		} else {
			c, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func readDistance(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, fmt.Errorf("topology: empty distance %s", path)
	}
	fields := strings.Fields(sc.Text())
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// rankByDistance orders every node other than self by ascending sysfs
// distance (lower is closer / higher bandwidth).
func rankByDistance(dist []int, nodes []Node, self int) []int {
	type cand struct {
		idx int
		d   int
	}
	cands := make([]cand, 0, len(nodes)-1)
	for i := range nodes {
		if i == self || i >= len(dist) {
			continue
		}
		cands = append(cands, cand{idx: nodes[i].ID, d: dist[i]})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].d < cands[j].d })
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.idx
	}
	return out
}

func identityRank(n, self int) []int {
	out := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != self {
			out = append(out, i)
		}
	}
	return out
}
