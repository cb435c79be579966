package sched

import "github.com/momentics/wsched/jobtable"

// ParallelFor splits [0, count) into ceil(count/batchSize) jobs, each
// invoking fn(workerID, start, end), wired through the same group barrier
// every other group uses (SPEC_FULL.md §4 "ParallelFor", grounded on
// original_source's job_parallel_for in job.h). It is a convenience
// composition over Schedule and the group API, not a new scheduling
// primitive: a caller could build the same thing by hand with GroupCreate
// plus one Schedule per batch.
//
// The returned group is already sized to its final member count at
// creation (see depgraph.Engine.SetMembership), so a concurrent GroupWait
// cannot observe it emptying before every batch has been submitted.
func (s *Scheduler) ParallelFor(callerWorker int32, count, batchSize int, fn func(workerID int32, start, end int)) (GroupHandle, error) {
	if batchSize < 1 {
		batchSize = 1
	}
	if count <= 0 {
		return s.GroupCreate(0)
	}
	n := (count + batchSize - 1) / batchSize

	g, err := s.GroupCreate(int32(n))
	if err != nil {
		return GroupHandle{}, err
	}

	for i := 0; i < n; i++ {
		start := i * batchSize
		end := start + batchSize
		if end > count {
			end = count
		}
		batchStart, batchEnd := start, end
		_, err := s.ScheduleInGroup(callerWorker, "parallel_for", func(workerID int32, _ any) {
			fn(workerID, batchStart, batchEnd)
		}, nil, jobtable.NoHandle, PriorityNormal, g)
		if err != nil {
			return g, err
		}
	}
	return g, nil
}

// ParallelForWait is ParallelFor followed by GroupWait and GroupDestroy,
// for the common case where the caller has no other use for the group.
func (s *Scheduler) ParallelForWait(callerWorker int32, count, batchSize int, fn func(workerID int32, start, end int)) error {
	g, err := s.ParallelFor(callerWorker, count, batchSize, fn)
	if err != nil {
		return err
	}
	s.GroupWait(callerWorker, g)
	s.GroupDestroy(g)
	return nil
}
