package cli

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/wsched/jobtable"
	"github.com/momentics/wsched/sched"
	"golang.org/x/sync/errgroup"
)

// Scenario is one named, self-checking end-to-end run from spec §8.
type Scenario struct {
	Name string
	Run  func(s *sched.Scheduler) error
}

// Scenarios lists every concrete scenario S1-S6 in spec order.
var Scenarios = []Scenario{
	{"S1-fan-out-fan-in", scenarioFanOutFanIn},
	{"S2-diamond", scenarioDiamond},
	{"S3-chain", scenarioChain},
	{"S4-cooperative-yield", scenarioCooperativeYield},
	{"S5-stealer-stress", scenarioStealerStress},
	{"S6-stale-handle", scenarioStaleHandle},
}

// scenarioFanOutFanIn is S1: a root produces a 10,000-int array; 40 children
// each sum a disjoint 250-element window; a reducer sums their partial
// sums. The reducer's result must equal the full sum.
func scenarioFanOutFanIn(s *sched.Scheduler) error {
	const n = 10000
	const children = 40
	const window = n / children

	data := make([]int, n)
	partials := make([]int, children)
	var reduced int

	root, _ := s.Schedule(-1, "root", func(_ int32, _ any) {
		for i := range data {
			data[i] = i + 1
		}
	}, nil, jobtable.NoHandle, sched.PriorityNormal)

	// The group is sized and every child bound to it via ScheduleInGroup
	// before any child can possibly become Ready, closing the same
	// membership race ParallelFor guards against: a plain Schedule followed
	// by a separate GroupAdd could let a fast child complete before its
	// membership was ever recorded, leaving the group's countdown short.
	g, _ := s.GroupCreate(int32(children))
	for i := 0; i < children; i++ {
		i := i
		_, err := s.ScheduleInGroup(-1, "child", func(_ int32, _ any) {
			sum := 0
			for j := i * window; j < (i+1)*window; j++ {
				sum += data[j]
			}
			partials[i] = sum
		}, nil, root, sched.PriorityNormal, g)
		if err != nil {
			return err
		}
	}

	reducer, _ := s.ScheduleContinuation("reducer", func(_ int32, _ any) {
		total := 0
		for _, p := range partials {
			total += p
		}
		reduced = total
	}, nil)
	s.GroupSubmit(-1, g, reducer)

	s.Wait(-1, reducer)
	s.GroupDestroy(g)

	expected := n * (n + 1) / 2
	if reduced != expected {
		return fmt.Errorf("S1: reducer sum = %d, want %d", reduced, expected)
	}
	return nil
}

// scenarioDiamond is S2: R -> A, R -> B, A -> J, B -> J. J must start no
// earlier than both A and B complete; R must end before either starts.
func scenarioDiamond(s *sched.Scheduler) error {
	r, _ := s.Schedule(-1, "R", func(_ int32, _ any) {}, nil, jobtable.NoHandle, sched.PriorityNormal)

	g, _ := s.GroupCreate(2)
	a, _ := s.ScheduleInGroup(-1, "A", func(_ int32, _ any) {}, nil, r, sched.PriorityNormal, g)
	b, _ := s.ScheduleInGroup(-1, "B", func(_ int32, _ any) {}, nil, r, sched.PriorityNormal, g)
	j, _ := s.ScheduleContinuation("J", func(_ int32, _ any) {}, nil)
	s.GroupSubmit(-1, g, j)

	s.Wait(-1, j)
	s.GroupDestroy(g)

	rStart, rEnd, _ := s.JobTiming(r)
	aStart, aEnd, _ := s.JobTiming(a)
	bStart, bEnd, _ := s.JobTiming(b)
	jStart, _, _ := s.JobTiming(j)

	if jStart < aEnd || jStart < bEnd {
		return fmt.Errorf("S2: J started before A/B completed")
	}
	if rEnd > aStart || rEnd > bStart {
		return fmt.Errorf("S2: R ended after A/B started")
	}
	_ = rStart
	return nil
}

// scenarioChain is S3: a 1,000-deep linear chain, each body appending its
// index to a shared vector. The vector must end up strictly ascending.
func scenarioChain(s *sched.Scheduler) error {
	const depth = 1000
	var mu sync.Mutex
	order := make([]int, 0, depth)

	prev := jobtable.NoHandle
	var last jobtable.Handle
	for i := 0; i < depth; i++ {
		i := i
		h, _ := s.Schedule(-1, "link", func(_ int32, _ any) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}, nil, prev, sched.PriorityNormal)
		prev = h
		last = h
	}
	s.Wait(-1, last)

	if len(order) != depth {
		return fmt.Errorf("S3: chain produced %d links, want %d", len(order), depth)
	}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			return fmt.Errorf("S3: chain order not strictly ascending at %d: %v <= %v", i, order[i], order[i-1])
		}
	}
	return nil
}

// scenarioCooperativeYield is S4: a cooperative job yields 5 times before
// completing while 100 compute jobs run alongside it. The cooperative job
// must complete exactly once, observe counts 1..6, and the compute jobs
// must not starve.
func scenarioCooperativeYield(s *sched.Scheduler) error {
	var resumes []int
	var mu sync.Mutex
	var completions atomic.Int64

	coop, _ := s.ScheduleCooperative(-1, "yielder", func(_ int32, data any) jobtable.CooperativeSignal {
		n := data.(*int)
		*n++
		mu.Lock()
		resumes = append(resumes, *n)
		mu.Unlock()
		if *n >= 6 {
			return jobtable.Complete
		}
		return jobtable.Yield
	}, new(int), jobtable.NoHandle, sched.PriorityNormal)

	computeHandles := make([]jobtable.Handle, 100)
	for i := range computeHandles {
		h, _ := s.Schedule(-1, "compute", func(_ int32, _ any) {
			completions.Add(1)
		}, nil, jobtable.NoHandle, sched.PriorityNormal)
		computeHandles[i] = h
	}

	s.Wait(-1, coop)
	s.WaitAll(-1, computeHandles)

	mu.Lock()
	got := append([]int(nil), resumes...)
	mu.Unlock()
	if len(got) != 6 {
		return fmt.Errorf("S4: yielder resumed %d times, want 6", len(got))
	}
	for i, v := range got {
		if v != i+1 {
			return fmt.Errorf("S4: resume sequence = %v, want 1..6", got)
		}
	}
	if completions.Load() != 100 {
		return fmt.Errorf("S4: only %d/100 compute jobs completed", completions.Load())
	}
	return nil
}

// scenarioStealerStress is S5: worker 0 (the caller, outside any worker
// loop) submits 100,000 no-op jobs; after wait_all, every submitted job must
// have completed. Only the completion count is checked; the number of
// successful steals is not read or checked.
func scenarioStealerStress(s *sched.Scheduler) error {
	const n = 100000
	handles := make([]jobtable.Handle, n)
	for i := 0; i < n; i++ {
		h, err := s.Schedule(-1, "noop", func(_ int32, _ any) {}, nil, jobtable.NoHandle, sched.PriorityNormal)
		if err != nil {
			return fmt.Errorf("S5: schedule failed at %d: %w", i, err)
		}
		handles[i] = h
	}
	s.WaitAll(-1, handles)

	stats := s.Stats()
	if stats.TotalCompleted < int64(n) {
		return fmt.Errorf("S5: completed %d, want >= %d", stats.TotalCompleted, n)
	}
	return nil
}

// scenarioStaleHandle is S6: record a job's handle, wait it, then cycle its
// slot's generation by scheduling enough further jobs, and confirm
// is_complete/wait both treat the stale handle as already complete. It uses
// its own small-capacity scheduler rather than the caller's so cycling a
// slot's generation doesn't require tens of thousands of filler jobs.
func scenarioStaleHandle(_ *sched.Scheduler) error {
	s := sched.New(sched.WithJobTableCapacity(8))
	defer s.Shutdown()

	h, _ := s.Schedule(-1, "target", func(_ int32, _ any) {}, nil, jobtable.NoHandle, sched.PriorityNormal)
	s.Wait(-1, h)

	cycles := s.JobTableCapacity() + 1
	fillers := make([]jobtable.Handle, cycles)
	for i := 0; i < cycles; i++ {
		fh, err := s.Schedule(-1, "filler", func(_ int32, _ any) {}, nil, jobtable.NoHandle, sched.PriorityNormal)
		if err != nil {
			return fmt.Errorf("S6: filler schedule failed at %d: %w", i, err)
		}
		fillers[i] = fh
		s.Wait(-1, fh)
	}
	s.WaitAll(-1, fillers)

	if !s.IsComplete(h) {
		return fmt.Errorf("S6: stale handle not reported complete")
	}
	s.Wait(-1, h) // must return immediately, not block
	return nil
}

// RunAll runs every scenario against its own fresh scheduler concurrently
// (each scenario is self-contained, so there is no shared state to race)
// and returns the names of any that failed. Each goroutine logs its own
// result and records a failure in the shared list instead of returning an
// error, so one failing scenario does not stop the rest from reporting.
func RunAll() []string {
	var mu sync.Mutex
	var failed []string

	var g errgroup.Group
	for _, sc := range Scenarios {
		sc := sc
		g.Go(func() error {
			s := newScheduler()
			defer s.Shutdown()
			if err := sc.Run(s); err != nil {
				logger.Printf("%s: FAIL: %v", sc.Name, err)
				mu.Lock()
				failed = append(failed, sc.Name)
				mu.Unlock()
				return nil
			}
			logger.Printf("%s: ok", sc.Name)
			return nil
		})
	}
	_ = g.Wait()
	return failed
}
