package sched

import "github.com/momentics/wsched/jobtable"

// BatchItem is one job description for ScheduleBatch: the same arguments
// Schedule takes, minus callerWorker and priority, which apply to the whole
// batch.
type BatchItem struct {
	Name  string
	Fn    Func
	Data  any
	After jobtable.Handle
}

// ScheduleBatch schedules every item and returns their handles in order,
// stopping at the first allocation failure (spec §4.G "bulk variant of
// schedule", grounded on original_source's job_submit_batch in job.h). Each
// item is classified ready/pending and, if ready, enqueued exactly as a
// single Schedule call would; the only difference from a loop of individual
// Schedule calls is that callers get one slice back instead of managing
// their own.
func (s *Scheduler) ScheduleBatch(callerWorker int32, priority Priority, items []BatchItem) ([]jobtable.Handle, error) {
	handles := make([]jobtable.Handle, len(items))
	for i, item := range items {
		h, err := s.Schedule(callerWorker, item.Name, item.Fn, item.Data, item.After, priority)
		if err != nil {
			return handles[:i], err
		}
		handles[i] = h
	}
	return handles, nil
}
