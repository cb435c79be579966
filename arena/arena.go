// File: arena/arena.go
// Author: momentics <momentics@gmail.com>
//
// Bump-pointer arena satisfying the embedder contract spec.md §6 asks of the
// core: init/alloc/alloc_aligned/reset/free over growable chained blocks,
// grounded on original_source's arena.c (mimalloc-backed blocks there,
// NUMAPool-backed blocks here since Go has no mimalloc heap to isolate).
// Scoped exactly to per-frame/per-group scratch memory, not a general
// allocator.

package arena

import "sync"

const defaultAlignment = 16

type block struct {
	next *block
	buf  []byte
	used int
}

// Arena is a bump-pointer allocator, normally bound to one job or one group
// at a time, matching the original's per-job/per-group scratch-arena usage
// pattern. Every method takes the arena's own mutex, so concurrent calls
// from several goroutines are serialized.
type Arena struct {
	mu        sync.Mutex
	pool      *NUMAPool
	node      int
	blockSize int
	first     *block
	current   *block
	totalUsed int
}

// Mark is a restore point captured by Mark and consumed by Restore,
// matching original_source's arena_mark_t.
type Mark struct {
	block *block
	used  int
	total int
}

// Init creates an arena with capacity bytes in its first block, backed by a
// NUMA-local pool for node (spec.md §6 "init(capacity)"). node < 0 means "no
// NUMA preference".
func Init(capacity int, node int) *Arena {
	if capacity < 4096 {
		capacity = 4096
	}
	a := &Arena{
		pool:      NewNUMAPool(node, capacity, node >= 0),
		node:      node,
		blockSize: capacity,
	}
	first := a.newBlock(capacity)
	a.first = first
	a.current = first
	return a
}

func (a *Arena) newBlock(size int) *block {
	buf := a.pool.Get()
	if len(buf) < size {
		buf = make([]byte, size)
	}
	return &block{buf: buf[:size]}
}

func alignUp(n, align int) int {
	if align < 1 {
		align = 1
	}
	return (n + align - 1) &^ (align - 1)
}

// AllocAligned bump-allocates size bytes aligned to align (a power of two),
// growing into a new chained block if the current one cannot fit the
// request (spec.md §6 "alloc_aligned(n, a)").
func (a *Arena) AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	b := a.current
	start := alignUp(b.used, align)
	if start+size > len(b.buf) {
		if nb, ok := a.findFit(size, align); ok {
			a.current = nb
			b = nb
			start = alignUp(b.used, align)
		} else {
			newSize := a.blockSize
			for newSize < size+align {
				newSize *= 2
			}
			nb := a.newBlock(newSize)
			a.current.next = nb
			a.current = nb
			b = nb
			start = alignUp(0, align)
		}
	}
	b.used = start + size
	a.totalUsed += size
	return b.buf[start : start+size]
}

// findFit looks for room in an earlier block before growing, mirroring the
// original's reuse of already-allocated blocks ahead of the current one.
func (a *Arena) findFit(size, align int) (*block, bool) {
	for b := a.first; b != nil && b != a.current; b = b.next {
		start := alignUp(b.used, align)
		if start+size <= len(b.buf) {
			return b, true
		}
	}
	return nil, false
}

// Alloc bump-allocates size bytes at the arena's default alignment
// (spec.md §6 "alloc(n)").
func (a *Arena) Alloc(size int) []byte {
	return a.AllocAligned(size, defaultAlignment)
}

// Reset frees every block but the first and rewinds it to empty (spec.md §6
// "reset"), for reuse across frames/groups without returning memory to the
// backing pool.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.first.next = nil
	a.first.used = 0
	a.current = a.first
	a.totalUsed = 0
}

// Mark captures the arena's current allocation point for later Restore.
func (a *Arena) Mark() Mark {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Mark{block: a.current, used: a.current.used, total: a.totalUsed}
}

// Restore rewinds the arena to a previously captured Mark, dropping any
// blocks allocated after it.
func (a *Arena) Restore(m Mark) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m.block.next = nil
	m.block.used = m.used
	a.current = m.block
	a.totalUsed = m.total
}

// Free releases every block back to the backing NUMA pool (spec.md §6
// "free"). The arena must not be used afterward.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for b := a.first; b != nil; {
		next := b.next
		a.pool.Put(b.buf)
		b = next
	}
	a.first = nil
	a.current = nil
}

// Used reports the arena's current live byte count, for a metrics exporter.
func (a *Arena) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalUsed
}
