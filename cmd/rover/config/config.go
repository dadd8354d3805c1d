package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
)

// SimulationConfig holds the complete rover simulation configuration
type SimulationConfig struct {
	// Basic simulation settings
	Simulation SimulationSettings `yaml:"simulation"`

	// Rover hardware and event queue geometry
	Engine EngineConfig `yaml:"engine"`

	// Termination conditions
	Termination TerminationConfig `yaml:"termination"`

	// Hazard resolution policy
	Resolution ResolutionConfig `yaml:"resolution"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Run artefacts
	Output OutputConfig `yaml:"output"`
}

// SimulationSettings holds basic simulation settings
type SimulationSettings struct {
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description"`
	Profile       string        `yaml:"profile"` // "rock", "sink", "free", "ffa"
	CycleInterval time.Duration `yaml:"cycle_interval"`
	Seed          int64         `yaml:"seed"`
}

// EngineConfig defines the rover and transcript queue sizes
type EngineConfig struct {
	NumWheels     int `yaml:"num_wheels"`
	QueueCapacity int `yaml:"queue_capacity"`
	SlotSize      int `yaml:"slot_size"` // bytes per transcript line
}

// TerminationConfig defines when a run passes
type TerminationConfig struct {
	TargetDistance   float64 `yaml:"target_distance"`
	TargetResolved   int     `yaml:"target_resolved"`
	DistancePerCycle float64 `yaml:"distance_per_cycle"`
}

// ResolutionConfig defines the resolver retry policy
type ResolutionConfig struct {
	MaxRetryAttempts   int `yaml:"max_retry_attempts"`
	FailureProbability int `yaml:"failure_probability"` // percent per attempt

	// Per-hazard overrides keyed by "sinking", "freewheeling", "blocked"
	HazardFailureProbability map[string]int `yaml:"hazard_failure_probability,omitempty"`
}

// LoggingConfig defines console logging settings
type LoggingConfig struct {
	ConsoleLevel     string `yaml:"console_level"` // "debug", "info", "warn", "error"
	MirrorTranscript bool   `yaml:"mirror_transcript"`
	ShowProgress     bool   `yaml:"show_progress"`
}

// OutputConfig defines where run artefacts are written
type OutputConfig struct {
	TranscriptDir string `yaml:"transcript_dir"`
	MetricsFile   string `yaml:"metrics_file,omitempty"`
	ReportDir     string `yaml:"report_dir,omitempty"` // empty disables the after-run report
	ReportFormat  string `yaml:"report_format,omitempty"`
}

// Validate checks if the configuration is valid
func (c *SimulationConfig) Validate() error {
	if c.Simulation.Name == "" {
		return fmt.Errorf("simulation name is required")
	}

	if _, err := core.LookupProfile(c.Simulation.Profile); err != nil {
		return err
	}

	if c.Simulation.CycleInterval < 0 {
		return fmt.Errorf("cycle interval must not be negative")
	}

	if c.Engine.NumWheels <= 0 {
		return fmt.Errorf("number of wheels must be positive")
	}

	if c.Engine.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive")
	}

	if c.Engine.SlotSize <= 0 {
		return fmt.Errorf("slot size must be positive")
	}

	if c.Termination.TargetDistance <= 0 && c.Termination.TargetResolved <= 0 {
		return fmt.Errorf("a target distance or a target resolved count is required")
	}

	if c.Termination.DistancePerCycle <= 0 {
		return fmt.Errorf("distance per cycle must be positive")
	}

	if c.Resolution.MaxRetryAttempts <= 0 {
		return fmt.Errorf("max retry attempts must be positive")
	}

	if c.Resolution.FailureProbability < 0 || c.Resolution.FailureProbability > 100 {
		return fmt.Errorf("failure probability must be between 0 and 100")
	}

	for name, p := range c.Resolution.HazardFailureProbability {
		state, err := core.ParseWheelState(strings.ToLower(name))
		if err != nil || !state.IsHazard() {
			return fmt.Errorf("unknown hazard %q in hazard_failure_probability", name)
		}
		if p < 0 || p > 100 {
			return fmt.Errorf("%s failure probability must be between 0 and 100", name)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if c.Logging.ConsoleLevel != "" && !contains(validLevels, c.Logging.ConsoleLevel) {
		return fmt.Errorf("console level must be one of %s", strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "markdown"}
	if c.Output.ReportFormat != "" && !contains(validFormats, c.Output.ReportFormat) {
		return fmt.Errorf("report format must be one of %s", strings.Join(validFormats, ", "))
	}

	return nil
}

// Profile resolves the configured scenario profile
func (c *SimulationConfig) Profile() (core.Profile, error) {
	return core.LookupProfile(c.Simulation.Profile)
}

// ToOptions maps the configuration onto engine options
func (c *SimulationConfig) ToOptions() core.Options {
	opts := core.Options{
		NumWheels:          c.Engine.NumWheels,
		MaxRetryAttempts:   c.Resolution.MaxRetryAttempts,
		FailureProbability: c.Resolution.FailureProbability,
		TargetDistance:     c.Termination.TargetDistance,
		TargetResolved:     c.Termination.TargetResolved,
		DistancePerCycle:   c.Termination.DistancePerCycle,
		CycleInterval:      c.Simulation.CycleInterval,
		QueueCapacity:      c.Engine.QueueCapacity,
		SlotSize:           c.Engine.SlotSize,
		Seed:               c.Simulation.Seed,
	}

	if len(c.Resolution.HazardFailureProbability) > 0 {
		opts.HazardFailureProbability = make(map[core.WheelState]int, len(c.Resolution.HazardFailureProbability))
		for name, p := range c.Resolution.HazardFailureProbability {
			if state, err := core.ParseWheelState(strings.ToLower(name)); err == nil && state.IsHazard() {
				opts.HazardFailureProbability[state] = p
			}
		}
	}

	return opts
}

// ToParams renders the configuration as simulation parameters, keyed as in
// simulation.yaml, so a loaded file can supply the prompt defaults.
func (c *SimulationConfig) ToParams() map[string]interface{} {
	params := map[string]interface{}{
		"num_wheels":          c.Engine.NumWheels,
		"max_retry_attempts":  c.Resolution.MaxRetryAttempts,
		"failure_probability": c.Resolution.FailureProbability,
		"target_distance":     c.Termination.TargetDistance,
		"target_resolved":     c.Termination.TargetResolved,
		"distance_per_cycle":  c.Termination.DistancePerCycle,
		"cycle_interval":      c.Simulation.CycleInterval,
		"mirror_transcript":   c.Logging.MirrorTranscript,
	}
	if p, err := c.Profile(); err == nil {
		params["profile"] = p.Key
	}
	if c.Simulation.Seed != 0 {
		params["seed"] = c.Simulation.Seed
	}
	return params
}

// String returns a human-readable representation of the configuration
func (c *SimulationConfig) String() string {
	overrides := "none"
	if len(c.Resolution.HazardFailureProbability) > 0 {
		names := make([]string, 0, len(c.Resolution.HazardFailureProbability))
		for name := range c.Resolution.HazardFailureProbability {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d%%", name, c.Resolution.HazardFailureProbability[name]))
		}
		overrides = strings.Join(parts, ", ")
	}

	return fmt.Sprintf(`Simulation Configuration:
  Name: %s
  Description: %s
  Profile: %s
  Cycle Interval: %v

Engine:
  Wheels: %d
  Queue: %d slots x %d bytes

Termination:
  Target Distance: %.2f
  Target Resolved: %d
  Distance Per Cycle: %.2f

Resolution:
  Max Retry Attempts: %d
  Failure Probability: %d%%
  Overrides: %s

Output:
  Transcript Directory: %s
  Metrics File: %s
  Report Directory: %s`,
		c.Simulation.Name,
		c.Simulation.Description,
		c.Simulation.Profile,
		c.Simulation.CycleInterval,
		c.Engine.NumWheels,
		c.Engine.QueueCapacity,
		c.Engine.SlotSize,
		c.Termination.TargetDistance,
		c.Termination.TargetResolved,
		c.Termination.DistancePerCycle,
		c.Resolution.MaxRetryAttempts,
		c.Resolution.FailureProbability,
		overrides,
		c.Output.TranscriptDir,
		c.Output.MetricsFile,
		c.Output.ReportDir,
	)
}

// GetDefaultConfig returns the standard six-wheel rover configuration
func GetDefaultConfig() *SimulationConfig {
	defaults := core.DefaultOptions()
	return &SimulationConfig{
		Simulation: SimulationSettings{
			Name:          "rover",
			Description:   "Rover hazard traversal with lock-step wheel cycles",
			Profile:       core.ProfileRock.Key,
			CycleInterval: defaults.CycleInterval,
		},
		Engine: EngineConfig{
			NumWheels:     defaults.NumWheels,
			QueueCapacity: defaults.QueueCapacity,
			SlotSize:      defaults.SlotSize,
		},
		Termination: TerminationConfig{
			TargetDistance:   defaults.TargetDistance,
			TargetResolved:   defaults.TargetResolved,
			DistancePerCycle: defaults.DistancePerCycle,
		},
		Resolution: ResolutionConfig{
			MaxRetryAttempts:   defaults.MaxRetryAttempts,
			FailureProbability: defaults.FailureProbability,
		},
		Logging: LoggingConfig{
			ConsoleLevel: "info",
			ShowProgress: true,
		},
		Output: OutputConfig{
			TranscriptDir: "transcripts",
			ReportFormat:  "json",
		},
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
