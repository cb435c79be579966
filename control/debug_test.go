package control_test

import (
	"testing"

	"github.com/momentics/wsched/control"
)

func TestDumpStateIsEmptyBeforeAnyProbeIsRegistered(t *testing.T) {
	dp := control.NewDebugProbes()
	if got := dp.DumpState(); len(got) != 0 {
		t.Fatalf("DumpState() = %v, want empty map", got)
	}
}

func TestDumpStateCallsEveryRegisteredProbe(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("workers", func() any { return 8 })
	dp.RegisterProbe("node", func() any { return "numa0" })

	got := dp.DumpState()
	if got["workers"] != 8 {
		t.Fatalf("DumpState()[\"workers\"] = %v, want 8", got["workers"])
	}
	if got["node"] != "numa0" {
		t.Fatalf("DumpState()[\"node\"] = %v, want \"numa0\"", got["node"])
	}
}

func TestRegisterProbeOverwritesAnExistingName(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("x", func() any { return 1 })
	dp.RegisterProbe("x", func() any { return 2 })

	got := dp.DumpState()
	if got["x"] != 2 {
		t.Fatalf("DumpState()[\"x\"] = %v, want 2 (last registration wins)", got["x"])
	}
}
