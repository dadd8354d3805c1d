package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
)

func feed(c *Collector, events ...core.Event) {
	for _, e := range events {
		c.Observe(e)
	}
}

func TestCollectorCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}

	feed(c,
		core.Event{Kind: core.EventHazardReported, Profile: "Sink", Hazard: core.Sinking},
		core.Event{Kind: core.EventHazardResolved, Profile: "Sink", Hazard: core.Sinking, Attempt: 2},
		core.Event{Kind: core.EventHazardReported, Profile: "Sink", Hazard: core.Sinking},
		core.Event{Kind: core.EventHazardFailed, Profile: "Sink", Hazard: core.Sinking, Attempt: 3},
		core.Event{Kind: core.EventCycleComplete, Profile: "Sink", Snapshot: core.Snapshot{Cycle: 1, TotalDistance: 0.1}},
		core.Event{Kind: core.EventScenarioComplete, Profile: "Sink", Snapshot: core.Snapshot{Outcome: core.OutcomeFailed, TotalDistance: 0.1}},
	)

	if got := testutil.ToFloat64(c.HazardsReported.WithLabelValues("Sink", "sinking")); got != 2 {
		t.Errorf("Expected 2 reported, got %v", got)
	}
	if got := testutil.ToFloat64(c.HazardsResolved.WithLabelValues("Sink", "sinking")); got != 1 {
		t.Errorf("Expected 1 resolved, got %v", got)
	}
	if got := testutil.ToFloat64(c.HazardsFailed.WithLabelValues("Sink", "sinking")); got != 1 {
		t.Errorf("Expected 1 failed, got %v", got)
	}
	if got := testutil.ToFloat64(c.Cycles.WithLabelValues("Sink")); got != 1 {
		t.Errorf("Expected 1 cycle, got %v", got)
	}
	if got := testutil.ToFloat64(c.DistanceVectored.WithLabelValues("Sink")); got != 0.1 {
		t.Errorf("Expected distance 0.1, got %v", got)
	}
	if got := testutil.ToFloat64(c.Scenarios.WithLabelValues("Sink", "FAILED")); got != 1 {
		t.Errorf("Expected 1 failed scenario, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "rover_resolution_attempts" {
			hist = mf.GetMetric()[0].GetHistogram()
		}
	}
	if hist == nil {
		t.Fatal("Expected rover_resolution_attempts histogram")
	}
	if hist.GetSampleCount() != 2 || hist.GetSampleSum() != 5 {
		t.Errorf("Expected 2 samples summing to 5, got %d / %v", hist.GetSampleCount(), hist.GetSampleSum())
	}
}

func TestCollectorReusesRegisteredVectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("Second NewCollector failed: %v", err)
	}

	first.Observe(core.Event{Kind: core.EventHazardReported, Profile: "Rock", Hazard: core.Blocked})
	second.Observe(core.Event{Kind: core.EventHazardReported, Profile: "Rock", Hazard: core.Blocked})

	if got := testutil.ToFloat64(first.HazardsReported.WithLabelValues("Rock", "blocked")); got != 2 {
		t.Errorf("Expected collectors to share counters, got %v", got)
	}
}

func TestNilCollectorIgnoresEvents(t *testing.T) {
	var c *Collector
	c.Observe(core.Event{Kind: core.EventHazardReported})
	if c.Gatherer() != nil {
		t.Error("Expected nil gatherer")
	}
}

func TestWriteTextfile(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}
	c.Observe(core.Event{Kind: core.EventCycleComplete, Profile: "FreeForAll", Snapshot: core.Snapshot{Cycle: 1, TotalDistance: 0.1}})

	path := filepath.Join(t.TempDir(), "rover.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read metrics: %v", err)
	}
	if !strings.Contains(string(data), `rover_cycles_total{profile="FreeForAll"} 1`) {
		t.Errorf("Unexpected metrics file:\n%s", data)
	}
}
