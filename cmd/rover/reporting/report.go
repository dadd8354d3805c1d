package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
)

// ReportConfig configures after-run report generation
type ReportConfig struct {
	OutputDir string
	Format    string // "json", "markdown"
}

// Report is the after-run report of one scenario
type Report struct {
	Metadata        ReportMetadata   `json:"metadata"`
	Summary         ReportSummary    `json:"summary"`
	Settings        ReportSettings   `json:"settings"`
	Hazards         []HazardReport   `json:"hazards"`
	Timeline        []TimelineEntry  `json:"timeline"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ReportMetadata identifies the run
type ReportMetadata struct {
	ScenarioID  string    `json:"scenario_id"`
	Profile     string    `json:"profile"`
	Seed        int64     `json:"seed"`
	GeneratedAt time.Time `json:"generated_at"`
	Duration    string    `json:"duration"`
	Transcript  string    `json:"transcript,omitempty"`
}

// ReportSummary is the outcome of the run
type ReportSummary struct {
	Outcome          string  `json:"outcome"`
	Reason           string  `json:"reason,omitempty"`
	Aborted          bool    `json:"aborted"`
	TotalDistance    float64 `json:"total_distance"`
	Cycles           int     `json:"cycles"`
	ResolvedProblems int     `json:"resolved_problems"`
	HazardsReported  int     `json:"hazards_reported"`
	StrandedWheel    *int    `json:"stranded_wheel,omitempty"`
	StrandedBy       string  `json:"stranded_by,omitempty"`
}

// ReportSettings records the options the run used
type ReportSettings struct {
	NumWheels          int            `json:"num_wheels"`
	MaxRetryAttempts   int            `json:"max_retry_attempts"`
	FailureProbability map[string]int `json:"failure_probability"`
	TargetDistance     float64        `json:"target_distance"`
	TargetResolved     int            `json:"target_resolved"`
	DistancePerCycle   float64        `json:"distance_per_cycle"`
}

// HazardReport is the tally for one hazard type
type HazardReport struct {
	Hazard            string  `json:"hazard"`
	Reported          int     `json:"reported"`
	Resolved          int     `json:"resolved"`
	Failed            int     `json:"failed"`
	Attempts          int     `json:"attempts"`
	AttemptsPerHazard float64 `json:"attempts_per_hazard"`
}

// TimelineEntry is one significant event
type TimelineEntry struct {
	Elapsed     string `json:"elapsed"`
	Cycle       int    `json:"cycle"`
	EventType   string `json:"event_type"`
	Description string `json:"description"`
}

// Recommendation suggests a configuration change for the next run
type Recommendation struct {
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Timeline records significant scenario events as they happen.
type Timeline struct {
	mu      sync.Mutex
	start   time.Time
	entries []TimelineEntry
}

// NewTimeline creates a timeline starting now
func NewTimeline() *Timeline {
	return &Timeline{start: time.Now()}
}

// Observe implements core.Observer.
func (t *Timeline) Observe(e core.Event) {
	var desc string
	switch e.Kind {
	case core.EventSetupComplete:
		desc = "Handlers ready, rover vectoring"
	case core.EventHazardReported:
		desc = fmt.Sprintf("Wheel %d reported %s", e.Wheel, e.Hazard)
	case core.EventHazardResolved:
		desc = fmt.Sprintf("Wheel %d freed from %s after %d attempt(s)", e.Wheel, e.Hazard, e.Attempt)
	case core.EventHazardFailed:
		desc = fmt.Sprintf("Wheel %d stranded by %s after %d attempts", e.Wheel, e.Hazard, e.Attempt)
	case core.EventScenarioComplete:
		desc = fmt.Sprintf("Scenario complete: %s at distance %.1f", e.Snapshot.Outcome, e.Snapshot.TotalDistance)
	default:
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TimelineEntry{
		Elapsed:     formatDuration(time.Since(t.start)),
		Cycle:       e.Snapshot.Cycle,
		EventType:   e.Kind.String(),
		Description: desc,
	})
}

// Entries returns a copy of the recorded entries
func (t *Timeline) Entries() []TimelineEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TimelineEntry(nil), t.entries...)
}

// BuildReport assembles the report for a finished run. tally and timeline
// may be nil.
func BuildReport(result core.Result, opts core.Options, tally *Tally, timeline *Timeline) *Report {
	r := &Report{
		Metadata: ReportMetadata{
			ScenarioID:  result.ScenarioID,
			Profile:     result.Profile,
			Seed:        result.Seed,
			GeneratedAt: time.Now(),
			Duration:    result.Elapsed.Round(time.Millisecond).String(),
			Transcript:  result.Transcript,
		},
		Summary: ReportSummary{
			Outcome:          result.Outcome.String(),
			Reason:           result.Reason,
			Aborted:          result.Aborted,
			TotalDistance:    result.TotalDistance,
			Cycles:           result.Cycles,
			ResolvedProblems: result.ResolvedProblems,
			HazardsReported:  result.HazardsReported,
		},
		Settings: ReportSettings{
			NumWheels:          opts.NumWheels,
			MaxRetryAttempts:   opts.MaxRetryAttempts,
			FailureProbability: make(map[string]int, len(core.Hazards)),
			TargetDistance:     opts.TargetDistance,
			TargetResolved:     opts.TargetResolved,
			DistancePerCycle:   opts.DistancePerCycle,
		},
	}

	if result.FailedWheel >= 0 && !result.Aborted {
		wheel := result.FailedWheel
		r.Summary.StrandedWheel = &wheel
		r.Summary.StrandedBy = result.FailedHazard.String()
	}

	for _, h := range core.Hazards {
		r.Settings.FailureProbability[h.String()] = opts.FailureProbabilityFor(h)
	}

	if tally != nil {
		for _, s := range tally.Stats() {
			hr := HazardReport{
				Hazard:   s.Hazard.String(),
				Reported: s.Reported,
				Resolved: s.Resolved,
				Failed:   s.Failed,
				Attempts: s.Attempts,
			}
			if handled := s.Resolved + s.Failed; handled > 0 {
				hr.AttemptsPerHazard = float64(s.Attempts) / float64(handled)
			}
			r.Hazards = append(r.Hazards, hr)
		}
	}

	if timeline != nil {
		r.Timeline = timeline.Entries()
	}

	r.Recommendations = recommend(r)
	return r
}

func recommend(r *Report) []Recommendation {
	recs := make([]Recommendation, 0)

	if r.Summary.StrandedWheel != nil {
		recs = append(recs, Recommendation{
			Priority: "High",
			Title:    "Raise the retry bound",
			Description: fmt.Sprintf("Wheel %d stayed %s after %d attempts. More attempts or a lower %s failure probability would let the run continue.",
				*r.Summary.StrandedWheel, r.Summary.StrandedBy, r.Settings.MaxRetryAttempts, r.Summary.StrandedBy),
		})
	}

	for _, h := range r.Hazards {
		if h.Reported >= 3 && h.AttemptsPerHazard >= 1.5 {
			recs = append(recs, Recommendation{
				Priority:    "Medium",
				Title:       fmt.Sprintf("Review the %s handler", h.Hazard),
				Description: fmt.Sprintf("%s hazards needed %.1f attempts each on average.", h.Hazard, h.AttemptsPerHazard),
			})
		}
	}

	if r.Summary.Aborted {
		recs = append(recs, Recommendation{
			Priority:    "Low",
			Title:       "Run to completion",
			Description: "The run was interrupted, so the targets were never evaluated.",
		})
	}

	return recs
}

// SaveReport writes the report in the configured format and returns its path
func SaveReport(r *Report, cfg ReportConfig) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	id := r.Metadata.ScenarioID
	if len(id) > 8 {
		id = id[:8]
	}
	filename := fmt.Sprintf("report_%s_%s_%s", r.Metadata.Profile, id, r.Metadata.GeneratedAt.Format("20060102_150405"))

	switch cfg.Format {
	case "", "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal report: %w", err)
		}
		path := filepath.Join(cfg.OutputDir, filename+".json")
		return path, os.WriteFile(path, data, 0644)
	case "markdown":
		path := filepath.Join(cfg.OutputDir, filename+".md")
		return path, os.WriteFile(path, []byte(renderMarkdown(r)), 0644)
	default:
		return "", fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}

func renderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Rover Scenario Report\n\n")
	sb.WriteString(fmt.Sprintf("**Scenario ID:** %s\n", r.Metadata.ScenarioID))
	sb.WriteString(fmt.Sprintf("**Profile:** %s (seed %d)\n", r.Metadata.Profile, r.Metadata.Seed))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", r.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Duration:** %s\n\n", r.Metadata.Duration))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Outcome:** %s\n", r.Summary.Outcome))
	if r.Summary.Reason != "" {
		sb.WriteString(fmt.Sprintf("- **Reason:** %s\n", r.Summary.Reason))
	}
	sb.WriteString(fmt.Sprintf("- **Distance:** %.1f over %d cycles\n", r.Summary.TotalDistance, r.Summary.Cycles))
	sb.WriteString(fmt.Sprintf("- **Resolved:** %d of %d hazards\n\n", r.Summary.ResolvedProblems, r.Summary.HazardsReported))

	if len(r.Hazards) > 0 {
		sb.WriteString("## Hazards\n\n")
		sb.WriteString("| Hazard | Reported | Resolved | Failed | Attempts |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, h := range r.Hazards {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n", h.Hazard, h.Reported, h.Resolved, h.Failed, h.Attempts))
		}
		sb.WriteString("\n")
	}

	if len(r.Timeline) > 0 {
		sb.WriteString("## Timeline\n\n")
		for _, e := range r.Timeline {
			sb.WriteString(fmt.Sprintf("- `%s` cycle %d: %s\n", e.Elapsed, e.Cycle, e.Description))
		}
		sb.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for _, rec := range r.Recommendations {
			sb.WriteString(fmt.Sprintf("### %s (%s Priority)\n", rec.Title, rec.Priority))
			sb.WriteString(fmt.Sprintf("%s\n\n", rec.Description))
		}
	}

	return sb.String()
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}
