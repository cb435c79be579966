package deque

import "sync/atomic"

// GlobalQueue is a bounded MPMC ring buffer, grounded on the sequenced-cell
// design in momentics/hioload-ws's core/concurrency.LockFreeQueue (itself a
// rendering of Dmitry Vyukov's MPMC queue). Unlike Deque it has no owner:
// both Enqueue and Dequeue race via CompareAndSwap on their respective
// index, which is the Open-Question resolution SPEC_FULL.md §5.1 records —
// the global queue is MPMC on both ends so a non-worker caller (e.g.
// Schedule called from outside any worker goroutine) can push directly.
type GlobalQueue[T any] struct {
	enqueuePos atomic.Uint64
	_          [56]byte
	dequeuePos atomic.Uint64
	_          [56]byte

	mask  uint64
	cells []cell[T]
}

type cell[T any] struct {
	sequence atomic.Uint64
	data     T
}

// NewGlobalQueue allocates a queue with capacity rounded up to a power of
// two (minimum 2).
func NewGlobalQueue[T any](capacity int) *GlobalQueue[T] {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	q := &GlobalQueue[T]{
		mask:  uint64(size - 1),
		cells: make([]cell[T], size),
	}
	for i := range q.cells {
		q.cells[i].sequence.Store(uint64(i))
	}
	return q
}

// Enqueue adds val; returns false if the queue is full.
func (q *GlobalQueue[T]) Enqueue(val T) bool {
	for {
		pos := q.enqueuePos.Load()
		c := &q.cells[pos&q.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if q.enqueuePos.CompareAndSwap(pos, pos+1) {
				c.data = val
				c.sequence.Store(pos + 1)
				return true
			}
		case diff < 0:
			return false // full
		default:
			// another producer advanced enqueuePos; retry
		}
	}
}

// Dequeue removes and returns an item; ok is false if the queue is empty.
func (q *GlobalQueue[T]) Dequeue() (item T, ok bool) {
	for {
		pos := q.dequeuePos.Load()
		c := &q.cells[pos&q.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if q.dequeuePos.CompareAndSwap(pos, pos+1) {
				item = c.data
				var zero T
				c.data = zero
				c.sequence.Store(pos + q.mask + 1)
				return item, true
			}
		case diff < 0:
			var zero T
			return zero, false // empty
		default:
			// another consumer advanced dequeuePos; retry
		}
	}
}

// Len is an instantaneous, racy size estimate.
func (q *GlobalQueue[T]) Len() int {
	return int(q.enqueuePos.Load() - q.dequeuePos.Load())
}
