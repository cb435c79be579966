package worker_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/wsched/depgraph"
	"github.com/momentics/wsched/jobtable"
	"github.com/momentics/wsched/topology"
	"github.com/momentics/wsched/worker"
)

func newPool(t *testing.T, workerCount int) (*worker.Pool, *jobtable.Table) {
	t.Helper()
	jobs := jobtable.New(256)
	groups := depgraph.NewGroupTable(16)
	topo := topology.Synthetic(1, workerCount)
	p := worker.New(worker.Config{WorkerCount: workerCount}, jobs, groups, topo)
	p.Start()
	t.Cleanup(p.Shutdown)
	return p, jobs
}

func scheduleNoDeps(t *testing.T, jobs *jobtable.Table, fn jobtable.Func) jobtable.Handle {
	t.Helper()
	h, err := jobs.Alloc()
	if err != nil {
		t.Fatalf("Alloc() error: %v", err)
	}
	slot, _ := jobs.Slot(h)
	slot.SetFn(fn)
	slot.SetIncomingDeps(0)
	slot.SetState(jobtable.Ready)
	return h
}

func TestPoolRunsPushedJobToCompletion(t *testing.T) {
	p, jobs := newPool(t, 2)

	var ran atomic.Bool
	h := scheduleNoDeps(t, jobs, func(_ int32, _ any) { ran.Store(true) })
	p.PushReady(-1, h)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if slot, ok := jobs.Slot(h); ok && slot.State() == jobtable.Completed {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !ran.Load() {
		t.Fatal("job pushed via PushReady never ran")
	}
}

func TestPoolStatsCountsCreatedAndCompleted(t *testing.T) {
	p, jobs := newPool(t, 2)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		p.RecordCreated()
		h := scheduleNoDeps(t, jobs, func(_ int32, _ any) { wg.Done() })
		p.PushReady(-1, h)
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("not every job completed within the deadline")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && p.Stats().TotalCompleted < n {
		time.Sleep(time.Millisecond)
	}
	if got := p.Stats().TotalCompleted; got < n {
		t.Fatalf("Stats().TotalCompleted = %d, want >= %d", got, n)
	}
	if got := p.Stats().TotalCreated; got != n {
		t.Fatalf("Stats().TotalCreated = %d, want %d", got, n)
	}
}

func TestHelpOnceFromDrainsCallerWorkersOwnLocalDeque(t *testing.T) {
	jobs := jobtable.New(16)
	groups := depgraph.NewGroupTable(4)
	topo := topology.Synthetic(1, 1)
	// A pool that is never Started: nothing is polling any local deque, so
	// HelpOnceFrom is the only thing that can ever run a job pushed to
	// worker 0's own queue.
	p := worker.New(worker.Config{WorkerCount: 1}, jobs, groups, topo)

	var ran atomic.Bool
	h := scheduleNoDeps(t, jobs, func(_ int32, _ any) { ran.Store(true) })
	p.PushReady(0, h)

	if !p.HelpOnceFrom(0) {
		t.Fatal("HelpOnceFrom(0) reported no work, want it to drain worker 0's own local deque")
	}
	if !ran.Load() {
		t.Fatal("HelpOnceFrom(0) returned true but the job never ran")
	}
}

func TestHelpOnceFromFallsBackToGlobalQueueForUnownedCaller(t *testing.T) {
	jobs := jobtable.New(16)
	groups := depgraph.NewGroupTable(4)
	topo := topology.Synthetic(1, 1)
	p := worker.New(worker.Config{WorkerCount: 1}, jobs, groups, topo)

	var ran atomic.Bool
	h := scheduleNoDeps(t, jobs, func(_ int32, _ any) { ran.Store(true) })
	p.PushReady(-1, h) // no owning worker: routed to a global queue

	if !p.HelpOnceFrom(-1) {
		t.Fatal("HelpOnceFrom(-1) reported no work, want it to drain the global queue")
	}
	if !ran.Load() {
		t.Fatal("HelpOnceFrom(-1) returned true but the job never ran")
	}
}

func TestWorkerCountReportsConfiguredSize(t *testing.T) {
	p, _ := newPool(t, 3)
	if got := p.WorkerCount(); got != 3 {
		t.Fatalf("WorkerCount() = %d, want 3", got)
	}
}
