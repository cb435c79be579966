package sched

import (
	"time"

	"github.com/momentics/wsched/arena"
	"github.com/momentics/wsched/atomic32"
	"github.com/momentics/wsched/depgraph"
	"github.com/momentics/wsched/jobtable"
	"github.com/momentics/wsched/profiler"
	"github.com/momentics/wsched/topology"
	"github.com/momentics/wsched/worker"
)

// Priority re-exports jobtable.Priority so callers of this package never
// need to import jobtable directly for the common path.
type Priority = jobtable.Priority

const (
	PriorityHigh   = jobtable.PriorityHigh
	PriorityNormal = jobtable.PriorityNormal
	PriorityLow    = jobtable.PriorityLow
)

// Func is user job code, receiving the id of the worker currently running
// it and the opaque data passed to Schedule.
type Func func(workerID int32, data any)

// CooperativeFunc lets a job yield control back to the worker loop between
// steps instead of running to completion in one call (spec §4.G).
type CooperativeFunc func(workerID int32, data any) jobtable.CooperativeSignal

// Scheduler is the fiber-based work-stealing job scheduler's public
// surface (spec §4.G). It owns a job table, a group table, a worker pool
// and the topology the pool's victim selection consults.
type Scheduler struct {
	cfg    Config
	jobs   *jobtable.Table
	groups *depgraph.GroupTable
	engine *depgraph.Engine
	arenas *arena.Table
	pool   *worker.Pool
}

// New constructs and starts a Scheduler. Call Shutdown when done.
func New(opts ...Option) *Scheduler {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.JobTableCapacity < 1 {
		cfg.JobTableCapacity = 4096
	}
	if cfg.GroupCapacity < 1 {
		cfg.GroupCapacity = 256
	}
	if cfg.ArenaCapacity < 1 {
		cfg.ArenaCapacity = 64
	}

	var topo *topology.Topology
	if cfg.NumaNodes > 0 {
		topo = topology.Synthetic(cfg.NumaNodes, cfg.CPUsPerNode)
	} else {
		topo = topology.Detect()
	}

	jobs := jobtable.New(cfg.JobTableCapacity)
	groups := depgraph.NewGroupTable(cfg.GroupCapacity)
	arenas := arena.NewTable(cfg.ArenaCapacity)
	pool := worker.New(cfg.Config, jobs, groups, topo)

	s := &Scheduler{cfg: cfg, jobs: jobs, groups: groups, engine: depgraph.New(jobs, groups), arenas: arenas, pool: pool}
	pool.Start()
	return s
}

// Shutdown stops every worker and releases their fiber pools. No further
// Schedule/Wait calls are valid afterward.
func (s *Scheduler) Shutdown() {
	s.pool.Shutdown()
}

// Topology exposes the detected/synthesized NUMA layout, e.g. for a
// metrics exporter or the demo CLI's scenario report.
func (s *Scheduler) Topology() *topology.Topology { return s.pool.Topo }

// Stats returns the pool's lifetime counters (SPEC_FULL.md §4 "Stats
// surface").
func (s *Scheduler) Stats() worker.Stats { return s.pool.Stats() }

// Profiler exposes the per-frame event ring for an external consumer
// (spec §4.I).
func (s *Scheduler) Profiler() *profiler.Hook { return s.pool.Profiler }

func wrapFunc(fn Func) jobtable.Func {
	if fn == nil {
		return nil
	}
	return func(workerID int32, data any) { fn(workerID, data) }
}

func wrapCoop(fn CooperativeFunc) jobtable.CooperativeFunc {
	if fn == nil {
		return nil
	}
	return func(workerID int32, data any) jobtable.CooperativeSignal { return fn(workerID, data) }
}

// noWorker is the workerID value meaning "not inside a worker" (e.g.
// Schedule called from the program's main goroutine); any value below zero
// is treated the same way.
const noWorker int32 = -1

// Schedule allocates a job and, once its dependencies (if any) are
// satisfied, makes it runnable (spec §4.G "schedule"). after may be
// jobtable.NoHandle for an unconditional job.
//
// callerWorker identifies the worker this call is being made from (pass
// noWorker/-1 when calling from outside any job body, e.g. from program
// startup); it decides where a job that is immediately Ready gets pushed
// (SPEC_FULL.md §5.3).
func (s *Scheduler) Schedule(callerWorker int32, name string, fn Func, data any, after jobtable.Handle, priority Priority) (jobtable.Handle, error) {
	return s.scheduleInternal(callerWorker, name, wrapFunc(fn), nil, data, after, priority, GroupHandle{})
}

// ScheduleInGroup is Schedule plus atomic group membership: the job is
// linked to g before it can possibly become Ready and run, closing the
// race ParallelFor would otherwise hit if it called GroupAdd/SetMembership
// only after Schedule had already pushed the job (spec §4.G's
// "group_create/add" is silent on ordering; SPEC_FULL.md's ParallelFor
// depends on this atomicity).
func (s *Scheduler) ScheduleInGroup(callerWorker int32, name string, fn Func, data any, after jobtable.Handle, priority Priority, g GroupHandle) (jobtable.Handle, error) {
	return s.scheduleInternal(callerWorker, name, wrapFunc(fn), nil, data, after, priority, g)
}

func (s *Scheduler) scheduleInternal(callerWorker int32, name string, fn jobtable.Func, coop jobtable.CooperativeFunc, data any, after jobtable.Handle, priority Priority, g GroupHandle) (jobtable.Handle, error) {
	h, err := s.jobs.Alloc()
	if err != nil {
		return jobtable.NoHandle, NewError(ErrCodeResourceExhausted, "job table exhausted").WithContext("name", name)
	}
	slot, _ := s.jobs.Slot(h)
	slot.SetName(name)
	slot.SetFn(fn)
	slot.SetCoopFn(coop)
	slot.SetData(data)
	slot.SetPriority(priority)
	slot.SetCreatedAt(time.Now().UnixNano())
	slot.SetIncomingDeps(1)

	if !g.IsNone() {
		if err := s.engine.SetMembership(h, g); err != nil {
			return jobtable.NoHandle, err
		}
	}
	if !after.IsNone() {
		_ = s.engine.AddDependency(h, after) // already-complete prerequisite: nothing to wait on
	}
	s.pool.RecordCreated()

	if slot.AddIncoming(-1) == 0 {
		slot.SetState(jobtable.Ready)
		s.pool.PushReady(int(callerWorker), h)
	}
	return h, nil
}

// ScheduleCooperative is Schedule's cooperative-function counterpart (spec
// §4.G "Cooperative task wrapper").
func (s *Scheduler) ScheduleCooperative(callerWorker int32, name string, fn CooperativeFunc, data any, after jobtable.Handle, priority Priority) (jobtable.Handle, error) {
	return s.scheduleInternal(callerWorker, name, nil, wrapCoop(fn), data, after, priority, GroupHandle{})
}

// ScheduleCooperativeInGroup is ScheduleCooperative plus atomic group
// membership, mirroring ScheduleInGroup for cooperative jobs.
func (s *Scheduler) ScheduleCooperativeInGroup(callerWorker int32, name string, fn CooperativeFunc, data any, after jobtable.Handle, priority Priority, g GroupHandle) (jobtable.Handle, error) {
	return s.scheduleInternal(callerWorker, name, nil, wrapCoop(fn), data, after, priority, g)
}

// ScheduleContinuation allocates a job meant to run only once a group's
// member count reaches zero (spec §4.G "group_submit"). Unlike Schedule, it
// is left with incoming_deps == 1 and is never self-readied or pushed here:
// pass the returned handle to GroupSubmit, whose barrier close is the only
// thing that can bring it to Ready.
func (s *Scheduler) ScheduleContinuation(name string, fn Func, data any) (jobtable.Handle, error) {
	h, err := s.jobs.Alloc()
	if err != nil {
		return jobtable.NoHandle, NewError(ErrCodeResourceExhausted, "job table exhausted").WithContext("name", name)
	}
	slot, _ := s.jobs.Slot(h)
	slot.SetName(name)
	slot.SetFn(wrapFunc(fn))
	slot.SetData(data)
	slot.SetPriority(PriorityNormal)
	slot.SetCreatedAt(time.Now().UnixNano())
	slot.SetIncomingDeps(1)
	s.pool.RecordCreated()
	return h, nil
}

// SpawnChild creates a job with parent as its sole prerequisite,
// inheriting parent's arena (spec §4.F "Hierarchical spawn").
func (s *Scheduler) SpawnChild(parent jobtable.Handle, fn Func, data any) (jobtable.Handle, error) {
	child, err := s.engine.SpawnChild(parent, wrapFunc(fn), data)
	if err != nil {
		return jobtable.NoHandle, err
	}
	s.pool.RecordCreated()
	if slot, ok := s.jobs.Slot(child); ok && slot.State() == jobtable.Ready {
		s.pool.PushReady(-1, child)
	}
	return child, nil
}

// Wait blocks the calling goroutine (helping with other work in the
// meantime, per spec §4.G) until h completes, is cancelled, or has already
// gone stale. callerWorker is the worker id this call runs on if it is
// itself inside a job body (e.g. a job waiting on a child it just
// scheduled), or -1 from any other caller (spec §4.E's "outside any worker
// loop" case, same convention Schedule already uses).
//
// Passing the real callerWorker matters: a job that schedules a child onto
// its own local deque and waits on it from inside its body has parked the
// only goroutine that would otherwise pop that deque. helpOnce below
// drains callerWorker's own local deque first for exactly this reason —
// see worker.Pool.HelpOnceFrom.
func (s *Scheduler) Wait(callerWorker int32, h jobtable.Handle) {
	for {
		if s.jobs.IsStale(h) {
			return
		}
		slot, ok := s.jobs.Slot(h)
		if !ok {
			return
		}
		switch slot.State() {
		case jobtable.Completed, jobtable.Cancelled:
			return
		}
		if !s.helpOnce(callerWorker) {
			atomic32.Pause()
		}
	}
}

// WaitAll waits for every handle in hs, from callerWorker (see Wait).
func (s *Scheduler) WaitAll(callerWorker int32, hs []jobtable.Handle) {
	for _, h := range hs {
		s.Wait(callerWorker, h)
	}
}

// helpOnce lets a waiting goroutine make progress on someone else's work
// instead of just spinning: it drains a job from callerWorker's own local
// deque if it has one and that deque is non-empty, then falls back to the
// global queues, running whichever it finds inline.
func (s *Scheduler) helpOnce(callerWorker int32) bool {
	return s.pool.HelpOnceFrom(int(callerWorker))
}
