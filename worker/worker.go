package worker

import (
	"time"

	"github.com/momentics/wsched/atomic32"
	"github.com/momentics/wsched/deque"
	"github.com/momentics/wsched/fiberpool"
	"github.com/momentics/wsched/jobtable"
	"github.com/momentics/wsched/topology"
)

// Worker is one execution lane: a local Chase-Lev deque, a fiber pool, and
// a NUMA-aware victim selector (spec §4.E).
type Worker struct {
	id     int
	pool   *Pool
	local  *deque.Deque[jobtable.Handle]
	fibers *fiberpool.Pool
	victim *topology.VictimSelector

	idleSpins int
	localPops int64
	stealsTry int64
	stealsWon int64
}

// ID returns the worker's index within its pool.
func (w *Worker) ID() int { return w.id }

// LocalStats reports this worker's lifetime local-pop and steal counters,
// named after original_source's WC_WorkerThread fields of the same shape
// (local_pops, steals_attempted, steals_succeeded).
func (w *Worker) LocalStats() (localPops, stealsAttempted, stealsSucceeded int64) {
	return w.localPops, w.stealsTry, w.stealsWon
}

// Local exposes the worker's own deque. sched.Schedule does not use it; it
// reaches "the caller's deque" (spec §4.G) through Pool.PushReady.
func (w *Worker) Local() *deque.Deque[jobtable.Handle] { return w.local }

func (w *Worker) run() {
	for !w.pool.shutdown.Load() {
		h, ok := w.local.PopBottom()
		if ok {
			w.localPops++
			w.idleSpins = 0
			w.execute(h)
			continue
		}

		h, ok = w.steal()
		if ok {
			w.idleSpins = 0
			w.execute(h)
			continue
		}

		h, ok = w.drainGlobal()
		if ok {
			w.idleSpins = 0
			w.execute(h)
			continue
		}

		w.idleSpins++
		if w.idleSpins < w.pool.cfg.MaxIdleSpins {
			atomic32.Pause()
			continue
		}
		w.sleep()
	}
}

// steal retries up to StealAttemptsPerRound times across victims chosen by
// the NUMA-aware policy (spec §4.E step 2, §4.H).
func (w *Worker) steal() (jobtable.Handle, bool) {
	attempts := w.pool.cfg.StealAttemptsPerRound
	n := len(w.pool.workers)
	for i := 0; i < attempts; i++ {
		victimID := w.victim.Select(n)
		if victimID < 0 {
			return jobtable.Handle{}, false
		}
		w.stealsTry++
		if h, ok := w.pool.workers[victimID].local.StealTop(); ok {
			w.stealsWon++
			return h, true
		}
	}
	return jobtable.Handle{}, false
}

// drainGlobal pops from the global high-priority queue first, then normal
// (spec §4.E step 3).
func (w *Worker) drainGlobal() (jobtable.Handle, bool) {
	if h, ok := w.pool.globalHigh.Dequeue(); ok {
		return h, true
	}
	return w.pool.globalNormal.Dequeue()
}

func (w *Worker) sleep() {
	w.pool.sleepMu.Lock()
	if !w.pool.shutdown.Load() {
		w.pool.sleepCond.Wait()
	}
	w.pool.sleepMu.Unlock()
	w.idleSpins = 0
}

// execute binds h to a fiber, runs its body, and on return records the
// completion and runs the dependency cascade (spec §4.E "Executing a
// job means acquiring a fiber, binding the job to it...").
func (w *Worker) execute(h jobtable.Handle) {
	s, ok := w.pool.Jobs.Slot(h)
	if !ok {
		return // handle went stale between dequeue and execution
	}
	s.SetState(jobtable.Running)
	s.SetWorkerID(int32(w.id))
	start := time.Now().UnixNano()
	s.SetStartedAt(start)

	body := func() { w.pool.runJob(w.id, s) }

	fiber, err := w.fibers.Acquire()
	if err != nil {
		// Fiber pool exhausted: run inline rather than stall the worker
		// loop waiting for one to free up (spec has no "block until a
		// fiber is free" requirement; cooperative jobs yield the same way
		// either way).
		body()
		return
	}
	_ = w.fibers.SwitchTo(fiber, body)
	w.fibers.Release(fiber)
}
