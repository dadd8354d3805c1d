package reporting

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
	"github.com/picogrid/rover-simulations/pkg/logger"
)

// Color definitions
var (
	colorPassed = color.New(color.FgGreen, color.Bold)
	colorFailed = color.New(color.FgRed, color.Bold)
	colorHeader = color.New(color.FgCyan)
	colorHazard = color.New(color.FgYellow)
	colorDimmed = color.New(color.FgHiBlack)
)

const summaryWidth = 58

// Tally counts hazards per type as a scenario runs.
type Tally struct {
	mu       sync.Mutex
	reported map[core.WheelState]int
	resolved map[core.WheelState]int
	attempts map[core.WheelState]int
	failed   map[core.WheelState]int
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{
		reported: make(map[core.WheelState]int),
		resolved: make(map[core.WheelState]int),
		attempts: make(map[core.WheelState]int),
		failed:   make(map[core.WheelState]int),
	}
}

// Observe implements core.Observer.
func (t *Tally) Observe(e core.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case core.EventHazardReported:
		t.reported[e.Hazard]++
	case core.EventResolveAttempt:
		t.attempts[e.Hazard]++
	case core.EventHazardResolved:
		t.resolved[e.Hazard]++
	case core.EventHazardFailed:
		t.failed[e.Hazard]++
	}
}

// HazardStats is the tally for one hazard type.
type HazardStats struct {
	Hazard   core.WheelState
	Reported int
	Resolved int
	Failed   int
	Attempts int
}

// Stats returns the tally for every hazard seen, in hazard order.
func (t *Tally) Stats() []HazardStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []HazardStats
	for _, h := range core.Hazards {
		if t.reported[h] == 0 {
			continue
		}
		out = append(out, HazardStats{
			Hazard:   h,
			Reported: t.reported[h],
			Resolved: t.resolved[h],
			Failed:   t.failed[h],
			Attempts: t.attempts[h],
		})
	}
	return out
}

// PrintSummary writes a formatted end-of-run summary.
func PrintSummary(w io.Writer, result core.Result, tally *Tally) {
	rule := strings.Repeat("═", summaryWidth)
	id := result.ScenarioID
	if len(id) > 8 {
		id = id[:8]
	}

	colorHeader.Fprintln(w, "\n"+rule)
	colorHeader.Fprintf(w, "  ROVER SCENARIO SUMMARY - %s (%s)\n", result.Profile, id)
	colorHeader.Fprintln(w, rule)

	outcome := colorPassed
	if result.Outcome != core.OutcomePassed {
		outcome = colorFailed
	}
	fmt.Fprintf(w, "\n  %-20s %s\n", "Outcome:", outcome.Sprint(result.Outcome))
	if result.Reason != "" {
		fmt.Fprintf(w, "  %-20s %s\n", "Reason:", result.Reason)
	}
	fmt.Fprintf(w, "  %-20s %.1f\n", "Distance vectored:", result.TotalDistance)
	fmt.Fprintf(w, "  %-20s %d\n", "Cycles:", result.Cycles)
	fmt.Fprintf(w, "  %-20s %d / %d\n", "Resolved hazards:", result.ResolvedProblems, result.HazardsReported)
	fmt.Fprintf(w, "  %-20s %v\n", "Duration:", result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  %-20s %d\n", "Seed:", result.Seed)

	if result.FailedWheel >= 0 && !result.Aborted {
		fmt.Fprintf(w, "  %-20s wheel %d (%s)\n", "Stranded:", result.FailedWheel, colorHazard.Sprint(result.FailedHazard))
	}

	if tally != nil {
		if stats := tally.Stats(); len(stats) > 0 {
			fmt.Fprintln(w, "\n  Hazards:")
			for _, s := range stats {
				fmt.Fprintf(w, "    %-14s reported %-3d resolved %-3d failed %-3d attempts %d\n",
					colorHazard.Sprint(s.Hazard), s.Reported, s.Resolved, s.Failed, s.Attempts)
			}
		}
	}

	if result.Transcript != "" {
		colorDimmed.Fprintf(w, "\n  Transcript: %s\n", result.Transcript)
	}
	colorHeader.Fprintln(w, rule)
}

// CycleProgress drives a progress bar from cycle events.
type CycleProgress struct {
	bar      *logger.ProgressBar
	finished bool
}

// NewCycleProgress returns a progress observer for a run expected to last
// the given distance, or nil when the run has no distance target.
func NewCycleProgress(opts core.Options, profile string) *CycleProgress {
	if opts.TargetDistance <= 0 || opts.DistancePerCycle <= 0 {
		return nil
	}
	total := int(math.Ceil(opts.TargetDistance/opts.DistancePerCycle - 1e-9))
	return &CycleProgress{bar: logger.NewProgressBar(total, fmt.Sprintf("%s cycles", profile))}
}

// Observe implements core.Observer.
func (p *CycleProgress) Observe(e core.Event) {
	if p == nil || p.finished {
		return
	}
	switch e.Kind {
	case core.EventCycleComplete:
		p.bar.Update(e.Snapshot.Cycle)
	case core.EventScenarioComplete:
		p.finished = true
		p.bar.Stop()
	}
}

// OutcomeCounts summarises repeated runs.
type OutcomeCounts map[string]map[core.Outcome]int

// Add records one result.
func (o OutcomeCounts) Add(r core.Result) {
	if o[r.Profile] == nil {
		o[r.Profile] = make(map[core.Outcome]int)
	}
	o[r.Profile][r.Outcome]++
}

// Print writes one line per profile.
func (o OutcomeCounts) Print(w io.Writer) {
	profiles := make([]string, 0, len(o))
	for p := range o {
		profiles = append(profiles, p)
	}
	sort.Strings(profiles)

	for _, p := range profiles {
		c := o[p]
		fmt.Fprintf(w, "  %-12s %s %d  %s %d\n", p,
			colorPassed.Sprint(core.OutcomePassed), c[core.OutcomePassed],
			colorFailed.Sprint(core.OutcomeFailed), c[core.OutcomeFailed])
	}
}
