package sched

// TotalCreated, TotalCompleted, TotalCancelled, ActiveJobs, and WorkerCount
// implement control.StatsSource, letting a Prometheus collector read live
// pool counters without sched importing prometheus itself.

func (s *Scheduler) TotalCreated() int64 {
	return s.pool.Stats().TotalCreated
}

func (s *Scheduler) TotalCompleted() int64 {
	return s.pool.Stats().TotalCompleted
}

func (s *Scheduler) TotalCancelled() int64 {
	return s.pool.Stats().TotalCancelled
}

func (s *Scheduler) ActiveJobs() int64 {
	return s.pool.Stats().ActiveTasks
}

func (s *Scheduler) WorkerCount() int {
	return s.pool.WorkerCount()
}
