package profiler_test

import (
	"testing"

	"github.com/momentics/wsched/profiler"
)

func TestNewFloorsCapacityAtOne(t *testing.T) {
	h := profiler.New(0)
	h.FrameStart()
	h.RecordJob(profiler.Event{WorkerID: 0, Name: "a"})
	h.RecordJob(profiler.Event{WorkerID: 0, Name: "b"})
	if got := len(h.FrameEnd()); got != 1 {
		t.Fatalf("FrameEnd() len = %d, want 1 (floored capacity)", got)
	}
}

func TestNewAssignsAFreshRunID(t *testing.T) {
	h1 := profiler.New(4)
	h2 := profiler.New(4)
	if h1.RunID == h2.RunID {
		t.Fatal("two Hooks got the same RunID")
	}
}

func TestRecordJobStoresEventsUpToCapacity(t *testing.T) {
	h := profiler.New(3)
	h.FrameStart()
	h.RecordJob(profiler.Event{WorkerID: 0, Name: "x", Start: 1, End: 2})
	h.RecordJob(profiler.Event{WorkerID: 1, Name: "y", Start: 3, End: 4})
	h.RecordJob(profiler.Event{WorkerID: 2, Name: "z", Start: 5, End: 6})

	events := h.FrameEnd()
	if len(events) != 3 {
		t.Fatalf("FrameEnd() len = %d, want 3", len(events))
	}
	if events[0].Name != "x" || events[1].Name != "y" || events[2].Name != "z" {
		t.Fatalf("FrameEnd() = %+v, want events in record order", events)
	}
	if got := h.Dropped(); got != 0 {
		t.Fatalf("Dropped() = %d, want 0 when capacity was not exceeded", got)
	}
}

func TestRecordJobDropsSilentlyOnOverflowAndCountsDropped(t *testing.T) {
	h := profiler.New(2)
	h.FrameStart()
	h.RecordJob(profiler.Event{Name: "keep-1"})
	h.RecordJob(profiler.Event{Name: "keep-2"})
	h.RecordJob(profiler.Event{Name: "dropped-1"})
	h.RecordJob(profiler.Event{Name: "dropped-2"})

	events := h.FrameEnd()
	if len(events) != 2 {
		t.Fatalf("FrameEnd() len = %d, want 2 (ring capacity)", len(events))
	}
	if got := h.Dropped(); got != 2 {
		t.Fatalf("Dropped() = %d, want 2", got)
	}
}

func TestFrameStartResetsTheRingForTheNextFrame(t *testing.T) {
	h := profiler.New(2)
	h.FrameStart()
	h.RecordJob(profiler.Event{Name: "frame-1-a"})
	h.RecordJob(profiler.Event{Name: "frame-1-b"})
	h.RecordJob(profiler.Event{Name: "frame-1-overflow"})
	if got := h.Dropped(); got != 1 {
		t.Fatalf("Dropped() after frame 1 = %d, want 1", got)
	}

	h.FrameStart()
	if got := h.Dropped(); got != 0 {
		t.Fatalf("Dropped() after FrameStart() = %d, want reset to 0", got)
	}
	h.RecordJob(profiler.Event{Name: "frame-2-a"})
	events := h.FrameEnd()
	if len(events) != 1 || events[0].Name != "frame-2-a" {
		t.Fatalf("FrameEnd() after reset = %+v, want [frame-2-a]", events)
	}
}
