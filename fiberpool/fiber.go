// Package fiberpool implements component D of the scheduler: the bounded
// pool of "fibers" a worker parks jobs on between cooperative steps.
//
// original_source/src/system/fiber.c gives each worker a fixed array of
// stackful fibers; fiber_execute_job binds a job to a free fiber, ucontext-
// switches onto it, and fiber_yield switches back without the job having
// completed. Go has no portable stackful-coroutine primitive (spec §9's
// Design Notes call this out explicitly), so a Fiber here is not a
// suspended stack: it is a rendezvous slot. A job's body is already split
// into discrete cooperative steps (jobtable.CooperativeFunc), and SwitchTo
// runs exactly one step to completion on a pooled goroutine, handing control
// back to the caller when that step returns. The worker loop releases the
// Fiber after every step; a job that yields is pushed back onto a queue,
// and its next step runs on whichever fiber and worker pick it up. From
// outside, this has the same effect as the C original's "yield, later
// resume".
package fiberpool

// Fiber is one slot in a Pool. Its identity (Index) is stable for the
// pool's lifetime; only the job bound to it changes across acquisitions.
type Fiber struct {
	index int
	done   chan struct{}
}

// Index returns the fiber's slot number within its owning Pool.
func (f *Fiber) Index() int { return f.index }
