package reporting

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
)

func strandedResult() core.Result {
	return core.Result{
		ScenarioID:      "fedcba9876543210",
		Profile:         "Sink",
		Seed:            3,
		Outcome:         core.OutcomeFailed,
		Reason:          "SinkHandler could not free wheel 4",
		TotalDistance:   0.2,
		Cycles:          2,
		HazardsReported: 1,
		FailedWheel:     4,
		FailedHazard:    core.Sinking,
		Elapsed:         250 * time.Millisecond,
	}
}

func TestBuildReport(t *testing.T) {
	opts := core.DefaultOptions()
	opts.HazardFailureProbability = map[core.WheelState]int{core.Sinking: 100}

	tally := NewTally()
	timeline := NewTimeline()
	for _, e := range []core.Event{
		{Kind: core.EventSetupComplete},
		{Kind: core.EventWheelVectoring, Wheel: 0},
		{Kind: core.EventHazardReported, Wheel: 4, Hazard: core.Sinking, Snapshot: core.Snapshot{Cycle: 2}},
		{Kind: core.EventResolveAttempt, Wheel: 4, Hazard: core.Sinking},
		{Kind: core.EventResolveAttempt, Wheel: 4, Hazard: core.Sinking},
		{Kind: core.EventResolveAttempt, Wheel: 4, Hazard: core.Sinking},
		{Kind: core.EventHazardFailed, Wheel: 4, Hazard: core.Sinking, Attempt: 3, Snapshot: core.Snapshot{Cycle: 2}},
		{Kind: core.EventScenarioComplete, Snapshot: core.Snapshot{Cycle: 2, Outcome: core.OutcomeFailed, TotalDistance: 0.2}},
	} {
		tally.Observe(e)
		timeline.Observe(e)
	}

	r := BuildReport(strandedResult(), opts, tally, timeline)

	if r.Summary.StrandedWheel == nil || *r.Summary.StrandedWheel != 4 || r.Summary.StrandedBy != "sinking" {
		t.Errorf("Unexpected stranded wheel: %+v", r.Summary)
	}
	if r.Settings.FailureProbability["sinking"] != 100 || r.Settings.FailureProbability["blocked"] != opts.FailureProbability {
		t.Errorf("Unexpected failure probabilities: %v", r.Settings.FailureProbability)
	}
	if len(r.Hazards) != 1 || r.Hazards[0].AttemptsPerHazard != 3 {
		t.Errorf("Unexpected hazards: %+v", r.Hazards)
	}
	// Vectoring and attempt events are not significant
	if len(r.Timeline) != 4 {
		t.Errorf("Expected 4 timeline entries, got %d: %+v", len(r.Timeline), r.Timeline)
	}
	if len(r.Recommendations) == 0 || r.Recommendations[0].Priority != "High" {
		t.Errorf("Expected a high priority recommendation, got %+v", r.Recommendations)
	}
}

func TestBuildReportWithoutObservers(t *testing.T) {
	result := strandedResult()
	result.Aborted = true

	r := BuildReport(result, core.DefaultOptions(), nil, nil)
	if r.Summary.StrandedWheel != nil {
		t.Error("Expected no stranded wheel for an aborted run")
	}
	if len(r.Hazards) != 0 || len(r.Timeline) != 0 {
		t.Error("Expected empty hazards and timeline")
	}
}

func TestSaveReport(t *testing.T) {
	r := BuildReport(strandedResult(), core.DefaultOptions(), nil, nil)
	dir := t.TempDir()

	path, err := SaveReport(r, ReportConfig{OutputDir: dir, Format: "json"})
	if err != nil {
		t.Fatalf("SaveReport json failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if decoded.Summary.Outcome != "FAILED" {
		t.Errorf("Expected FAILED outcome, got %s", decoded.Summary.Outcome)
	}

	path, err = SaveReport(r, ReportConfig{OutputDir: dir, Format: "markdown"})
	if err != nil {
		t.Fatalf("SaveReport markdown failed: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("Expected .md path, got %s", path)
	}
	md, _ := os.ReadFile(path)
	if !strings.Contains(string(md), "# Rover Scenario Report") {
		t.Errorf("Unexpected markdown:\n%s", md)
	}

	if _, err := SaveReport(r, ReportConfig{OutputDir: dir, Format: "html"}); err == nil {
		t.Error("Expected unsupported format error")
	}
}
