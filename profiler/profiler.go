// Package profiler implements component I: a lock-free, drop-on-overflow
// per-frame event ring, grounded directly on original_source's
// profiler_frame_start/profiler_record_job/profiler_frame_end
// (src/system/profiler.c), which reserves a slot with an interlocked
// increment and silently drops events once the fixed array fills.
package profiler

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Event is one recorded job execution (spec §4.I: "{start_tick, end_tick,
// worker_id, name}").
type Event struct {
	Start    int64
	End      int64
	WorkerID int32
	Name     string
}

// Hook is a fixed-capacity, multi-writer event ring scoped to one frame.
// RecordJob never blocks and never allocates: it reserves a slot with a
// single atomic add and either writes into a pre-sized array or drops the
// event, matching the original's "nothrow and lock-free" requirement.
type Hook struct {
	events []Event
	cursor atomic.Uint64
	cap    uint64

	// RunID identifies one scheduler run across all its frames, used to
	// correlate exported frames when the consumer drains across more than
	// one (spec.md doesn't need this; it is SPEC_FULL.md's own addition so
	// an external trace consumer can tell two runs' frames apart).
	RunID uuid.UUID
}

// New builds a Hook with room for capacity events per frame.
func New(capacity int) *Hook {
	if capacity < 1 {
		capacity = 1
	}
	return &Hook{
		events: make([]Event, capacity),
		cap:    uint64(capacity),
		RunID:  uuid.New(),
	}
}

// FrameStart resets the ring for a new frame. Must not be called
// concurrently with RecordJob. The worker pool never calls it; the consumer
// of the hook calls it from a single goroutine between frames.
func (h *Hook) FrameStart() {
	h.cursor.Store(0)
}

// RecordJob appends an event, dropping it silently if the frame's capacity
// is already exhausted (spec §4.I "drop on overflow").
func (h *Hook) RecordJob(e Event) {
	idx := h.cursor.Add(1) - 1
	if idx >= h.cap {
		return
	}
	h.events[idx] = e
}

// FrameEnd returns a snapshot of every event recorded since the last
// FrameStart, for an external consumer to read between frames (spec §4.I).
func (h *Hook) FrameEnd() []Event {
	n := h.cursor.Load()
	if n > h.cap {
		n = h.cap
	}
	out := make([]Event, n)
	copy(out, h.events[:n])
	return out
}

// Dropped reports how many events this frame reserved a slot for but could
// not store, zero if the frame never overflowed.
func (h *Hook) Dropped() uint64 {
	n := h.cursor.Load()
	if n <= h.cap {
		return 0
	}
	return n - h.cap
}
