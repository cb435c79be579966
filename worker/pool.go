// Package worker implements component E: the per-core worker loop that
// pops local work, steals across the topology, drains the global queues,
// and idles down to a condition-variable sleep — grounded on
// original_source's wc_pool_worker_thread_main and wc_pool_select_victim
// (src/system/thread_pool.c), adapted to Go's M:N goroutine scheduling
// instead of one OS thread per worker.
package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/wsched/deque"
	"github.com/momentics/wsched/depgraph"
	"github.com/momentics/wsched/fiberpool"
	"github.com/momentics/wsched/jobtable"
	"github.com/momentics/wsched/profiler"
	"github.com/momentics/wsched/topology"
)

// Pool owns every worker, the two global queues, and the shared dependency
// engine. It does not itself expose job submission semantics (that is
// sched's job); Pool is the execution substrate sched.Scheduler drives.
type Pool struct {
	cfg Config

	Jobs   *jobtable.Table
	Groups *depgraph.GroupTable
	Engine *depgraph.Engine
	Topo   *topology.Topology

	Profiler *profiler.Hook

	workers      []*Worker
	globalHigh   *deque.GlobalQueue[jobtable.Handle]
	globalNormal *deque.GlobalQueue[jobtable.Handle]

	sleepMu   sync.Mutex
	sleepCond *sync.Cond
	shutdown  atomic.Bool
	wg        sync.WaitGroup

	totalCreated   atomic.Int64
	totalCompleted atomic.Int64
	totalCancelled atomic.Int64
}

// New builds a worker pool bound to the given job/group tables and
// topology, but does not start any goroutines — call Start.
func New(cfg Config, jobs *jobtable.Table, groups *depgraph.GroupTable, topo *topology.Topology) *Pool {
	cfg = cfg.withDefaults()
	p := &Pool{
		cfg:          cfg,
		Jobs:         jobs,
		Groups:       groups,
		Engine:       depgraph.New(jobs, groups),
		Topo:         topo,
		Profiler:     profiler.New(cfg.ProfilerEventsPerFrame),
		globalHigh:   deque.NewGlobalQueue[jobtable.Handle](cfg.GlobalQueueCapacity),
		globalNormal: deque.NewGlobalQueue[jobtable.Handle](cfg.GlobalQueueCapacity),
	}
	p.sleepCond = sync.NewCond(&p.sleepMu)

	nodeAssign := topo.AssignWorkers(cfg.WorkerCount)
	p.workers = make([]*Worker, cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		fibers, err := fiberpool.New(cfg.FibersPerWorker)
		if err != nil {
			panic(err) // capacity is always >=1 and ants construction only fails on bad size
		}
		p.workers[i] = &Worker{
			id:     i,
			pool:   p,
			local:  deque.New[jobtable.Handle](cfg.LocalDequeCapacity),
			fibers: fibers,
			victim: topology.NewVictimSelector(topo, nodeAssign, i, seedFor(i)),
		}
	}
	return p
}

func seedFor(workerID int) uint32 {
	return uint32(workerID)*0x9e3779b9 + uint32(time.Now().UnixNano())
}

// Start launches every worker's run loop.
func (p *Pool) Start() {
	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		w := w
		go func() {
			defer p.wg.Done()
			w.run()
		}()
	}
}

// Shutdown signals every worker to exit its loop and waits for them to
// drain, then releases their fiber pools.
func (p *Pool) Shutdown() {
	p.shutdown.Store(true)
	p.wakeAll()
	p.wg.Wait()
	for _, w := range p.workers {
		w.fibers.Close()
	}
}

// WorkerCount returns the number of workers in the pool.
func (p *Pool) WorkerCount() int { return len(p.workers) }

func (p *Pool) wakeAll() {
	p.sleepMu.Lock()
	p.sleepCond.Broadcast()
	p.sleepMu.Unlock()
}

// PushReady enqueues a Ready job. workerID selects the owning worker's
// local deque when called from inside that worker's run loop (cache-local
// fast path); workerID < 0 routes to a global queue instead, which is the
// Open-Question resolution SPEC_FULL.md §5.3 records for submissions that
// have no owning worker (e.g. Schedule called from outside any worker).
func (p *Pool) PushReady(workerID int, h jobtable.Handle) {
	if workerID >= 0 && workerID < len(p.workers) {
		if p.workers[workerID].local.PushBottom(h) {
			p.wakeAll()
			return
		}
	}
	s, ok := p.Jobs.Slot(h)
	high := ok && s.Priority() == jobtable.PriorityHigh
	q := p.globalNormal
	if high {
		q = p.globalHigh
	}
	for !q.Enqueue(h) {
		if p.shutdown.Load() {
			return
		}
		// Both global queues are bounded and sized generously (spec §4.C
		// default capacities); a full queue under normal load means every
		// worker is saturated, so a short cooperative yield before retrying
		// is preferable to growing the queue unboundedly.
		time.Sleep(time.Microsecond)
	}
	p.wakeAll()
}

// Stats is the counters surface adopted from original_source's
// WC_TaskStats (task.h), SPEC_FULL.md §4.
type Stats struct {
	TotalCreated   int64
	TotalCompleted int64
	TotalCancelled int64
	ActiveTasks    int64
	PendingTasks   int64
}

// runJob runs one cooperative step-loop (or a plain job to completion) for
// workerID (-1 when run inline outside any worker's loop via HelpOnce),
// finalizing through finishJob once the job reports Complete (spec §4.G
// "Cooperative task wrapper").
func (p *Pool) runJob(workerID int, s *jobtable.Slot) {
	if coop := s.CoopFn(); coop != nil {
		for {
			switch coop(int32(workerID), s.Data()) {
			case jobtable.Continue:
				continue
			case jobtable.Yield:
				s.SetState(jobtable.Ready)
				p.PushReady(workerID, s.Handle())
				return
			case jobtable.Complete:
				p.finishJob(workerID, s)
				return
			}
		}
	}
	if fn := s.Fn(); fn != nil {
		fn(int32(workerID), s.Data())
	}
	p.finishJob(workerID, s)
}

func (p *Pool) finishJob(workerID int, s *jobtable.Slot) {
	end := time.Now().UnixNano()
	s.SetCompletedAt(end)

	if p.Profiler != nil {
		p.Profiler.RecordJob(profiler.Event{
			Start:    s.StartedAt(),
			End:      end,
			WorkerID: int32(workerID),
			Name:     s.Name(),
		})
	}

	handle := s.Handle()
	p.Engine.Complete(handle, func(rh jobtable.Handle) {
		p.PushReady(workerID, rh)
	})
	p.totalCompleted.Add(1)
	p.Jobs.Retire(handle, jobtable.Completed)
}

// executeInline runs h to completion on the calling goroutine, with no
// owning worker (workerID -1). Used by HelpOnce, for callers of Wait that
// are not themselves inside a worker's run loop.
func (p *Pool) executeInline(h jobtable.Handle) bool {
	return p.executeInlineAs(-1, h)
}

// executeInlineAs is executeInline tagged with workerID instead of always
// -1, for HelpOnceFrom running a job pulled off callerWorker's own local
// deque: the job genuinely is running on that worker, on the same goroutine
// that would otherwise be inside its run loop popping it the ordinary way.
func (p *Pool) executeInlineAs(workerID int, h jobtable.Handle) bool {
	s, ok := p.Jobs.Slot(h)
	if !ok {
		return false
	}
	s.SetState(jobtable.Running)
	s.SetWorkerID(int32(workerID))
	s.SetStartedAt(time.Now().UnixNano())
	p.runJob(workerID, s)
	return true
}

// HelpOnce drains and runs a single job from the global queues inline,
// returning false if both are empty. sched.Wait calls this instead of
// spinning so a caller blocked on a handle contributes throughput rather
// than just burning cycles (spec §4.G wait's "help by ... executing a
// stolen job").
func (p *Pool) HelpOnce() bool {
	if h, ok := p.globalHigh.Dequeue(); ok {
		return p.executeInline(h)
	}
	if h, ok := p.globalNormal.Dequeue(); ok {
		return p.executeInline(h)
	}
	return false
}

// HelpOnceFrom is HelpOnce called from inside callerWorker's own job body
// (callerWorker < 0 means "no owning worker", identical to HelpOnce).
//
// A job body that schedules a child onto its own worker's local deque and
// then Waits on it from within that same body has parked the only goroutine
// that runs that worker's loop — the child is still stealable by any other
// running worker, but if every worker is simultaneously in this state (each
// blocked waiting on a child sitting in its own local deque), nobody's loop
// is polling to steal anything and HelpOnce's global-only drain never
// resolves it. Draining callerWorker's own local deque here, on the
// goroutine that would otherwise just spin, closes that gap: the job runs
// exactly where PushReady would have placed it, on the calling worker
// itself, with no other worker's help needed.
func (p *Pool) HelpOnceFrom(callerWorker int) bool {
	if callerWorker >= 0 && callerWorker < len(p.workers) {
		if h, ok := p.workers[callerWorker].local.PopBottom(); ok {
			return p.executeInlineAs(callerWorker, h)
		}
	}
	return p.HelpOnce()
}

// RecordCreated increments the lifetime created-jobs counter; sched calls
// this from Schedule.
func (p *Pool) RecordCreated() { p.totalCreated.Add(1) }

// RecordCancelled increments the lifetime cancelled-jobs counter.
func (p *Pool) RecordCancelled() { p.totalCancelled.Add(1) }

// Stats returns a snapshot of the pool's lifetime counters.
func (p *Pool) Stats() Stats {
	return Stats{
		TotalCreated:   p.totalCreated.Load(),
		TotalCompleted: p.totalCompleted.Load(),
		TotalCancelled: p.totalCancelled.Load(),
		ActiveTasks:    p.totalCreated.Load() - p.totalCompleted.Load() - p.totalCancelled.Load(),
	}
}
