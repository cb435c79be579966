package sched

import "github.com/momentics/wsched/control"

// DebugProbes returns a control.DebugProbes registry pre-populated with
// this scheduler's own introspection points (job/worker/topology counts),
// on top of whatever platform probes control.RegisterPlatformProbes adds.
// A caller can register further probes before dumping state, e.g. from the
// demo CLI's serve subcommand's /debug endpoint.
func (s *Scheduler) DebugProbes() *control.DebugProbes {
	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)
	dp.RegisterProbe("wsched.workers", func() any { return s.WorkerCount() })
	dp.RegisterProbe("wsched.numa_nodes", func() any { return s.Topology().NodeCount() })
	dp.RegisterProbe("wsched.jobs_created", func() any { return s.TotalCreated() })
	dp.RegisterProbe("wsched.jobs_completed", func() any { return s.TotalCompleted() })
	dp.RegisterProbe("wsched.jobs_active", func() any { return s.ActiveJobs() })
	return dp
}
