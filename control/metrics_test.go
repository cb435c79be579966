package control_test

import (
	"testing"

	"github.com/momentics/wsched/control"
)

func TestGetSnapshotIsEmptyBeforeAnySet(t *testing.T) {
	mr := control.NewMetricsRegistry()
	if got := mr.GetSnapshot(); len(got) != 0 {
		t.Fatalf("GetSnapshot() = %v, want empty map", got)
	}
}

func TestSetThenGetSnapshotRoundTrip(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Set("tasks_completed", int64(7))
	mr.Set("tasks_active", int64(3))

	got := mr.GetSnapshot()
	if got["tasks_completed"] != int64(7) {
		t.Fatalf("GetSnapshot()[\"tasks_completed\"] = %v, want 7", got["tasks_completed"])
	}
	if got["tasks_active"] != int64(3) {
		t.Fatalf("GetSnapshot()[\"tasks_active\"] = %v, want 3", got["tasks_active"])
	}
}

func TestGetSnapshotReturnsACopyNotTheLiveMap(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Set("k", 1)

	snap := mr.GetSnapshot()
	snap["k"] = 999
	snap["new"] = "injected"

	fresh := mr.GetSnapshot()
	if fresh["k"] != 1 {
		t.Fatalf("mutating a snapshot affected the registry: k = %v, want 1", fresh["k"])
	}
	if _, ok := fresh["new"]; ok {
		t.Fatal("mutating a snapshot injected a key into the registry")
	}
}

func TestSetOverwritesAnExistingKey(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Set("k", "first")
	mr.Set("k", "second")
	if got := mr.GetSnapshot()["k"]; got != "second" {
		t.Fatalf("GetSnapshot()[\"k\"] = %v, want \"second\"", got)
	}
}
