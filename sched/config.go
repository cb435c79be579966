package sched

import "github.com/momentics/wsched/worker"

// Config is the Scheduler's resolved configuration. Zero fields of the
// embedded worker.Config are defaulted by worker.Config.withDefaults; zero
// JobTableCapacity, GroupCapacity and ArenaCapacity are defaulted by New
// (4096, 256 and 64).
type Config struct {
	worker.Config

	// NumaNodes/CPUsPerNode synthesize a topology when the platform has no
	// discoverable NUMA layout (0 means "use topology.Detect() instead").
	NumaNodes     int
	CPUsPerNode   int
	GroupCapacity int
	// JobTableCapacity sizes the job slab (spec §4.C default 4,096-65,536).
	JobTableCapacity int
	// ArenaCapacity sizes the concurrently-live scratch-arena table (spec §6
	// "Arena ... used for per-frame and per-group scratch memory").
	ArenaCapacity int
}

// Option customizes a Scheduler at construction, following the same
// functional-options shape as the teacher's server.ServerOption
// (server/options.go).
type Option func(*Config)

// WithWorkerCount sets the number of worker goroutines (default:
// runtime.NumCPU()-1, applied by worker.Config.withDefaults when left
// unset or non-positive).
func WithWorkerCount(n int) Option {
	return func(c *Config) { c.WorkerCount = n }
}

// WithLocalDequeCapacity sets each worker's local deque capacity.
func WithLocalDequeCapacity(n int) Option {
	return func(c *Config) { c.LocalDequeCapacity = n }
}

// WithGlobalQueueCapacity sets the high/normal global queue capacities.
func WithGlobalQueueCapacity(n int) Option {
	return func(c *Config) { c.GlobalQueueCapacity = n }
}

// WithFibersPerWorker sets each worker's fiber-pool size.
func WithFibersPerWorker(n int) Option {
	return func(c *Config) { c.FibersPerWorker = n }
}

// WithStealAttemptsPerRound overrides the default of 4 (spec §4.E).
func WithStealAttemptsPerRound(n int) Option {
	return func(c *Config) { c.StealAttemptsPerRound = n }
}

// WithMaxIdleSpins overrides the default of ~1000 (spec §4.E).
func WithMaxIdleSpins(n int) Option {
	return func(c *Config) { c.MaxIdleSpins = n }
}

// WithSyntheticTopology forces a synthesized topology of n nodes sharing
// cpusPerNode logical CPUs each, instead of detecting real NUMA hardware —
// primarily for tests and the demo CLI's scenario runner.
func WithSyntheticTopology(nodes, cpusPerNode int) Option {
	return func(c *Config) {
		c.NumaNodes = nodes
		c.CPUsPerNode = cpusPerNode
	}
}

// WithGroupCapacity sets the maximum number of live job groups.
func WithGroupCapacity(n int) Option {
	return func(c *Config) { c.GroupCapacity = n }
}

// WithJobTableCapacity sets the fixed job-slot slab size.
func WithJobTableCapacity(n int) Option {
	return func(c *Config) { c.JobTableCapacity = n }
}

// WithArenaCapacity sets the maximum number of concurrently live scratch
// arenas.
func WithArenaCapacity(n int) Option {
	return func(c *Config) { c.ArenaCapacity = n }
}
