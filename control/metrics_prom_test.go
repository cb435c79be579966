package control_test

import (
	"strings"
	"testing"

	"github.com/momentics/wsched/control"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// fakeStats is a minimal control.StatsSource for exercising PromCollector
// without pulling in sched.Scheduler.
type fakeStats struct {
	created, completed, cancelled, active int64
	workers                               int
}

func (f *fakeStats) TotalCreated() int64   { return f.created }
func (f *fakeStats) TotalCompleted() int64 { return f.completed }
func (f *fakeStats) TotalCancelled() int64 { return f.cancelled }
func (f *fakeStats) ActiveJobs() int64     { return f.active }
func (f *fakeStats) WorkerCount() int      { return f.workers }

func TestPromCollectorDescribeEmitsFiveDescriptors(t *testing.T) {
	c := control.NewPromCollector(&fakeStats{})
	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)

	n := 0
	for range ch {
		n++
	}
	if n != 5 {
		t.Fatalf("Describe() emitted %d descriptors, want 5", n)
	}
}

func TestPromCollectorCollectReadsLiveStatsSourceValues(t *testing.T) {
	src := &fakeStats{created: 10, completed: 7, cancelled: 1, active: 2, workers: 4}
	c := control.NewPromCollector(src)

	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)

	var metrics []prometheus.Metric
	for m := range ch {
		metrics = append(metrics, m)
	}
	if len(metrics) != 5 {
		t.Fatalf("Collect() emitted %d metrics, want 5", len(metrics))
	}

	want := map[string]float64{
		"wsched_jobs_created_total":   10,
		"wsched_jobs_completed_total": 7,
		"wsched_jobs_cancelled_total": 1,
		"wsched_jobs_active":          2,
		"wsched_workers":              4,
	}
	for _, m := range metrics {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			t.Fatalf("metric.Write() error: %v", err)
		}
		got := pb.GetGauge().GetValue()
		if pb.Counter != nil {
			got = pb.GetCounter().GetValue()
		}
		desc := m.Desc().String()
		matched := false
		for name, v := range want {
			if strings.Contains(desc, `"`+name+`"`) {
				matched = true
				if got != v {
					t.Fatalf("%s = %v, want %v", name, got, v)
				}
			}
		}
		if !matched {
			t.Fatalf("unexpected metric %s", desc)
		}
	}
}

func TestNewRegistryGatherIncludesAllFiveMetrics(t *testing.T) {
	src := &fakeStats{created: 1, completed: 1, cancelled: 0, active: 0, workers: 2}
	reg := control.NewRegistry(src)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	if len(families) != 5 {
		t.Fatalf("Gather() returned %d metric families, want 5", len(families))
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"wsched_jobs_created_total",
		"wsched_jobs_completed_total",
		"wsched_jobs_cancelled_total",
		"wsched_jobs_active",
		"wsched_workers",
	} {
		if !names[want] {
			t.Fatalf("Gather() missing metric family %q", want)
		}
	}
}
