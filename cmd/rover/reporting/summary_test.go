package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
)

func TestTallyStats(t *testing.T) {
	tally := NewTally()
	for _, e := range []core.Event{
		{Kind: core.EventHazardReported, Hazard: core.Blocked},
		{Kind: core.EventResolveAttempt, Hazard: core.Blocked},
		{Kind: core.EventResolveAttempt, Hazard: core.Blocked},
		{Kind: core.EventHazardResolved, Hazard: core.Blocked},
		{Kind: core.EventHazardReported, Hazard: core.Sinking},
		{Kind: core.EventHazardFailed, Hazard: core.Sinking},
	} {
		tally.Observe(e)
	}

	stats := tally.Stats()
	if len(stats) != 2 {
		t.Fatalf("Expected 2 hazard types, got %d", len(stats))
	}
	// Hazards are reported in declaration order: sinking before blocked
	if stats[0].Hazard != core.Sinking || stats[0].Failed != 1 {
		t.Errorf("Unexpected sinking stats: %+v", stats[0])
	}
	if stats[1].Hazard != core.Blocked || stats[1].Attempts != 2 || stats[1].Resolved != 1 {
		t.Errorf("Unexpected blocked stats: %+v", stats[1])
	}
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	tally := NewTally()
	tally.Observe(core.Event{Kind: core.EventHazardReported, Hazard: core.Sinking})
	tally.Observe(core.Event{Kind: core.EventHazardFailed, Hazard: core.Sinking})

	var buf bytes.Buffer
	PrintSummary(&buf, core.Result{
		ScenarioID:      "0123456789abcdef",
		Profile:         "Sink",
		Outcome:         core.OutcomeFailed,
		Reason:          "SinkHandler could not free wheel 2",
		TotalDistance:   0.4,
		Cycles:          4,
		HazardsReported: 1,
		FailedWheel:     2,
		FailedHazard:    core.Sinking,
		Elapsed:         1500 * time.Millisecond,
		Transcript:      "transcripts/Sink17-10-2026-09:30.txt",
	}, tally)

	out := buf.String()
	for _, want := range []string{
		"ROVER SCENARIO SUMMARY - Sink (01234567)",
		"FAILED",
		"SinkHandler could not free wheel 2",
		"wheel 2 (sinking)",
		"reported 1",
		"Transcript: transcripts/Sink17-10-2026-09:30.txt",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q:\n%s", want, out)
		}
	}
}

func TestNewCycleProgress(t *testing.T) {
	opts := core.DefaultOptions()
	opts.TargetDistance = 0
	if NewCycleProgress(opts, "Rock") != nil {
		t.Error("Expected no progress bar without a distance target")
	}

	var p *CycleProgress
	p.Observe(core.Event{Kind: core.EventCycleComplete})
}

func TestOutcomeCounts(t *testing.T) {
	color.NoColor = true

	counts := make(OutcomeCounts)
	counts.Add(core.Result{Profile: "Rock", Outcome: core.OutcomePassed})
	counts.Add(core.Result{Profile: "Rock", Outcome: core.OutcomePassed})
	counts.Add(core.Result{Profile: "FreeForAll", Outcome: core.OutcomeFailed})

	var buf bytes.Buffer
	counts.Print(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "FreeForAll") {
		t.Errorf("Expected profiles sorted, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "PASSED 2") {
		t.Errorf("Expected 2 passes for Rock, got %q", lines[1])
	}
}
