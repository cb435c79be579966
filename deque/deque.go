// Package deque implements the two ring buffers the scheduler moves jobs
// through: a single-owner Chase-Lev work-stealing deque (per worker) and a
// bounded MPMC ring (the global fallback queue). Both are grounded on the
// Chase-Lev deque in original_source/src/system/deque.c and the Go-idiomatic
// renderings of it seen across the examples pack (notably
// rutvijjoshi26-parallel-compressor-go's WSDeque and momentics/hioload-ws's
// core/concurrency.LockFreeQueue), generalized to a generic job reference
// type. Both have a fixed capacity and never resize: a push onto a full
// ring reports failure to the caller.
package deque

import (
	"sync/atomic"

	"github.com/momentics/wsched/atomic32"
)

// Deque is the per-worker bounded ring buffer described in spec §4.B.
// PushBottom and PopBottom are owner-only; StealTop may be called by any
// other worker. Capacity is rounded up to the next power of two.
//
// Ordering discipline: PushBottom release-stores bottom so a concurrent
// StealTop's acquire-load of bottom observes the freshly written slot.
// PopBottom and StealTop race on top via CompareAndSwap, which is
// sequentially consistent in the Go memory model.
type Deque[T any] struct {
	top atomic.Uint64
	_   atomic32.CacheLinePad
	// bottom is only ever written by the owning goroutine; it is atomic
	// only so StealTop's acquire-load is well-defined under the race
	// detector and the Go memory model.
	bottom atomic.Uint64
	_      atomic32.CacheLinePad

	mask uint64
	buf  []T
}

// New creates a Deque whose capacity is the next power of two >= capacity
// (minimum 2).
func New[T any](capacity int) *Deque[T] {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Deque[T]{
		mask: uint64(size - 1),
		buf:  make([]T, size),
	}
}

// Cap returns the deque's fixed capacity.
func (d *Deque[T]) Cap() int { return len(d.buf) }

// Len is an instantaneous, racy size estimate — useful for stats only.
func (d *Deque[T]) Len() int {
	b := d.bottom.Load()
	t := d.top.Load()
	if b < t {
		return 0
	}
	return int(b - t)
}

// PushBottom appends v at the bottom. Owner-only. Returns false (Full) when
// the ring has no free slot; spec.md §4.B leaves resize optional and this
// implementation does not resize — callers fall back to the global queue.
func (d *Deque[T]) PushBottom(v T) bool {
	b := d.bottom.Load()
	t := d.top.Load()
	if b-t >= uint64(len(d.buf)) {
		return false
	}
	d.buf[b&d.mask] = v
	d.bottom.Store(b + 1) // release: publishes buf[b] to thieves
	return true
}

// PopBottom removes and returns the bottom element. Owner-only.
func (d *Deque[T]) PopBottom() (T, bool) {
	var zero T
	b := d.bottom.Load()
	if b == 0 {
		return zero, false
	}
	b--
	d.bottom.Store(b)

	// Full fence: makes the tentative decrement of bottom visible to any
	// thief before we read top, so a thief racing on the last element
	// cannot believe the deque is larger than it is.
	t := d.top.Load()
	if t > b {
		// Deque was already empty; restore bottom.
		d.bottom.Store(t)
		return zero, false
	}
	v := d.buf[b&d.mask]
	if t == b {
		// Last element: race the thieves for it.
		if !d.top.CompareAndSwap(t, t+1) {
			// A thief won.
			d.bottom.Store(t + 1)
			return zero, false
		}
		d.bottom.Store(t + 1)
	}
	return v, true
}

// StealTop removes and returns the top element. Callable by any worker
// other than the owner.
func (d *Deque[T]) StealTop() (T, bool) {
	var zero T
	t := d.top.Load()
	b := d.bottom.Load()
	if t >= b {
		return zero, false
	}
	v := d.buf[t&d.mask]
	if !d.top.CompareAndSwap(t, t+1) {
		return zero, false
	}
	return v, true
}
