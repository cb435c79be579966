package fiberpool

import (
	"errors"
	"fmt"
	"math/bits"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// ErrExhausted is returned by Acquire when every fiber in the pool is bound
// to a running job (spec §4.D: the fiber pool is a hard bound on in-flight
// cooperative steps per worker).
var ErrExhausted = errors.New("fiberpool: exhausted")

// Pool is a per-worker fixed-size set of fibers. The underlying goroutines
// that actually run a fiber's step are supplied by an ants.Pool, the same
// bounded-goroutine-pool pattern uniyakcom-beat's bus.go uses for its
// asyncTask dispatch, rather than one ad hoc "go func(){}" per cooperative
// step.
type Pool struct {
	fibers []Fiber
	// freeWords is a bitmap, one bit per fiber, 1 meaning free. Acquire
	// clears a bit with CAS; Release sets it back. Sized in 64-bit words so
	// the default 64 fibers per worker (worker.Config.FibersPerWorker) fit
	// in a single word.
	freeWords []atomic.Uint64

	gpool *ants.Pool
}

// New builds a pool of capacity fibers, backed by an ants.Pool sized to
// match (spec §4.D default capacity is small, tens to low hundreds per
// worker, so a 1:1 goroutine-pool sizing keeps every fiber runnable without
// ants queuing a step behind another).
func New(capacity int) (*Pool, error) {
	if capacity < 1 {
		capacity = 1
	}
	gp, err := ants.NewPool(capacity, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("fiberpool: %w", err)
	}
	nWords := (capacity + 63) / 64
	p := &Pool{
		fibers:    make([]Fiber, capacity),
		freeWords: make([]atomic.Uint64, nWords),
		gpool:     gp,
	}
	for i := range p.fibers {
		p.fibers[i] = Fiber{index: i, done: make(chan struct{}, 1)}
	}
	// Mark every fiber free. The last word may have unused high bits for
	// capacities not a multiple of 64; those bits are never addressed by
	// Acquire because idx is bounded by capacity below.
	for w := range p.freeWords {
		p.freeWords[w].Store(^uint64(0))
	}
	return p, nil
}

// Cap returns the pool's fixed fiber count.
func (p *Pool) Cap() int { return len(p.fibers) }

// Acquire reserves an idle fiber. Returns ErrExhausted if none is free
// rather than blocking; the worker loop (spec §4.E) then runs the job's
// body inline on its own goroutine.
func (p *Pool) Acquire() (*Fiber, error) {
	cap := len(p.fibers)
	for w := range p.freeWords {
		word := &p.freeWords[w]
		for {
			bitsWord := word.Load()
			if bitsWord == 0 {
				break
			}
			bit := bits.TrailingZeros64(bitsWord)
			idx := w*64 + bit
			if idx >= cap {
				break
			}
			if word.CompareAndSwap(bitsWord, bitsWord&^(uint64(1)<<uint(bit))) {
				return &p.fibers[idx], nil
			}
			// Lost the race for this bit; reload and retry this word.
		}
	}
	return nil, ErrExhausted
}

// Release returns a fiber to the free set. The caller must not use f again
// until a subsequent Acquire hands it back out.
func (p *Pool) Release(f *Fiber) {
	w := f.index / 64
	bit := uint(f.index % 64)
	p.freeWords[w].Or(uint64(1) << bit)
}

// SwitchTo runs step to completion on a pooled goroutine and blocks the
// calling worker until it returns, which is the externally observable
// behavior of the C original's fiber_execute_job + implicit switch back:
// the worker thread is parked for exactly the duration of one cooperative
// step. A panic inside step is recovered and returned as an error, mirroring
// the defer/recover wrapper in uniyakcom-beat's asyncTask.Run.
func (p *Pool) SwitchTo(f *Fiber, step func()) (err error) {
	submitErr := p.gpool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("fiberpool: step panicked: %v", r)
			}
			f.done <- struct{}{}
		}()
		step()
	})
	if submitErr != nil {
		return fmt.Errorf("fiberpool: submit: %w", submitErr)
	}
	<-f.done
	return err
}

// Close releases the underlying goroutine pool. No fiber may be acquired or
// switched to afterward.
func (p *Pool) Close() {
	p.gpool.Release()
}
