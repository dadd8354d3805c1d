package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
	"github.com/picogrid/rover-simulations/pkg/logger"
)

// envOverrides lists the ROVER_* variables that override a loaded config.
// Unset variables leave their pointer nil.
type envOverrides struct {
	Profile       *string        `env:"ROVER_PROFILE"`
	CycleInterval *time.Duration `env:"ROVER_CYCLE_INTERVAL"`
	Seed          *int64         `env:"ROVER_SEED"`

	NumWheels     *int `env:"ROVER_NUM_WHEELS"`
	QueueCapacity *int `env:"ROVER_QUEUE_CAPACITY"`
	SlotSize      *int `env:"ROVER_SLOT_SIZE"`

	TargetDistance   *float64 `env:"ROVER_TARGET_DISTANCE"`
	TargetResolved   *int     `env:"ROVER_TARGET_RESOLVED"`
	DistancePerCycle *float64 `env:"ROVER_DISTANCE_PER_CYCLE"`

	MaxRetryAttempts         *int           `env:"ROVER_MAX_RETRY_ATTEMPTS"`
	FailureProbability       *int           `env:"ROVER_FAILURE_PROBABILITY"`
	HazardFailureProbability map[string]int `env:"ROVER_HAZARD_FAILURE_PROBABILITY"` // sinking:100,blocked:50

	LogLevel         *string `env:"ROVER_LOG_LEVEL"`
	MirrorTranscript *bool   `env:"ROVER_MIRROR_TRANSCRIPT"`
	TranscriptDir    *string `env:"ROVER_TRANSCRIPT_DIR"`
	MetricsFile      *string `env:"ROVER_METRICS_FILE"`
	ReportDir        *string `env:"ROVER_REPORT_DIR"`
	ReportFormat     *string `env:"ROVER_REPORT_FORMAT"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*SimulationConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Start from defaults so a partial file only overrides what it names
	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from file or returns default, with environment overrides
func LoadConfigOrDefault(path string) (*SimulationConfig, error) {
	var config *SimulationConfig
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			logger.Warnf("Could not load config from %s: %v", path, err)
			config = nil
		}
	}

	// Try default locations if no config loaded yet
	if config == nil {
		defaultPaths := []string{
			"rover.yaml",
			filepath.Join("cmd", "rover", "config.yaml"),
			"config.yaml",
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				config, err = LoadConfig(p)
				if err == nil {
					logger.Debugf("Loaded config from: %s", p)
					break
				}
			}
		}
	}

	if config == nil {
		logger.Debug("Using default configuration")
		config = GetDefaultConfig()
	}

	// Always apply environment variable overrides
	if err := MergeWithEnvironment(config); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *SimulationConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies prompted or flag parameters to the configuration.
// Keys match the parameter names in simulation.yaml.
func MergeWithCLIOverrides(config *SimulationConfig, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "profile":
			if name, ok := value.(string); ok {
				if p, err := core.LookupProfile(name); err == nil {
					config.Simulation.Profile = p.Key
				}
			}
		case "num_wheels":
			if count, ok := toInt(value); ok && count > 0 {
				config.Engine.NumWheels = count
			}
		case "max_retry_attempts":
			if count, ok := toInt(value); ok && count > 0 {
				config.Resolution.MaxRetryAttempts = count
			}
		case "failure_probability":
			if p, ok := toInt(value); ok && p >= 0 && p <= 100 {
				config.Resolution.FailureProbability = p
			}
		case "sinking_failure_probability", "freewheeling_failure_probability", "blocked_failure_probability":
			if p, ok := toInt(value); ok && p >= 0 && p <= 100 {
				if config.Resolution.HazardFailureProbability == nil {
					config.Resolution.HazardFailureProbability = make(map[string]int)
				}
				config.Resolution.HazardFailureProbability[strings.TrimSuffix(key, "_failure_probability")] = p
			}
		case "target_distance":
			if d, ok := toFloat(value); ok && d >= 0 {
				config.Termination.TargetDistance = d
			}
		case "target_resolved":
			if count, ok := toInt(value); ok && count >= 0 {
				config.Termination.TargetResolved = count
			}
		case "distance_per_cycle":
			if d, ok := toFloat(value); ok && d > 0 {
				config.Termination.DistancePerCycle = d
			}
		case "cycle_interval":
			if d, ok := toDuration(value); ok && d >= 0 {
				config.Simulation.CycleInterval = d
			}
		case "seed":
			if seed, ok := toInt(value); ok {
				config.Simulation.Seed = int64(seed)
			}
		case "transcript_dir":
			if dir, ok := value.(string); ok && dir != "" {
				config.Output.TranscriptDir = dir
			}
		case "metrics_file":
			if path, ok := value.(string); ok {
				config.Output.MetricsFile = path
			}
		case "report_dir":
			if dir, ok := value.(string); ok {
				config.Output.ReportDir = dir
			}
		case "report_format":
			if format, ok := value.(string); ok && contains([]string{"json", "markdown"}, format) {
				config.Output.ReportFormat = format
			}
		case "mirror_transcript":
			if mirror, ok := value.(bool); ok {
				config.Logging.MirrorTranscript = mirror
			}
		case "log_level":
			if level, ok := value.(string); ok {
				validLevels := []string{"debug", "info", "warn", "error"}
				if contains(validLevels, level) {
					config.Logging.ConsoleLevel = level
				}
			}
		}
	}
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*SimulationConfig, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	// Apply CLI overrides after environment variables
	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment applies ROVER_* environment variables to the configuration
func MergeWithEnvironment(config *SimulationConfig) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Profile != nil {
		if p, err := core.LookupProfile(*o.Profile); err == nil {
			config.Simulation.Profile = p.Key
		} else {
			logger.Warnf("Ignoring ROVER_PROFILE: %v", err)
		}
	}
	if o.CycleInterval != nil && *o.CycleInterval >= 0 {
		config.Simulation.CycleInterval = *o.CycleInterval
	}
	if o.Seed != nil {
		config.Simulation.Seed = *o.Seed
	}

	if o.NumWheels != nil && *o.NumWheels > 0 {
		config.Engine.NumWheels = *o.NumWheels
	}
	if o.QueueCapacity != nil && *o.QueueCapacity > 0 {
		config.Engine.QueueCapacity = *o.QueueCapacity
	}
	if o.SlotSize != nil && *o.SlotSize > 0 {
		config.Engine.SlotSize = *o.SlotSize
	}

	if o.TargetDistance != nil && *o.TargetDistance >= 0 {
		config.Termination.TargetDistance = *o.TargetDistance
	}
	if o.TargetResolved != nil && *o.TargetResolved >= 0 {
		config.Termination.TargetResolved = *o.TargetResolved
	}
	if o.DistancePerCycle != nil && *o.DistancePerCycle > 0 {
		config.Termination.DistancePerCycle = *o.DistancePerCycle
	}

	if o.MaxRetryAttempts != nil && *o.MaxRetryAttempts > 0 {
		config.Resolution.MaxRetryAttempts = *o.MaxRetryAttempts
	}
	if o.FailureProbability != nil && *o.FailureProbability >= 0 && *o.FailureProbability <= 100 {
		config.Resolution.FailureProbability = *o.FailureProbability
	}
	if len(o.HazardFailureProbability) > 0 {
		if config.Resolution.HazardFailureProbability == nil {
			config.Resolution.HazardFailureProbability = make(map[string]int, len(o.HazardFailureProbability))
		}
		for name, p := range o.HazardFailureProbability {
			config.Resolution.HazardFailureProbability[strings.ToLower(name)] = p
		}
	}

	if o.LogLevel != nil {
		level := strings.ToLower(*o.LogLevel)
		if contains([]string{"debug", "info", "warn", "error"}, level) {
			config.Logging.ConsoleLevel = level
		}
	}
	if o.MirrorTranscript != nil {
		config.Logging.MirrorTranscript = *o.MirrorTranscript
	}
	if o.TranscriptDir != nil && *o.TranscriptDir != "" {
		config.Output.TranscriptDir = *o.TranscriptDir
	}
	if o.MetricsFile != nil {
		config.Output.MetricsFile = *o.MetricsFile
	}
	if o.ReportDir != nil {
		config.Output.ReportDir = *o.ReportDir
	}
	if o.ReportFormat != nil {
		config.Output.ReportFormat = strings.ToLower(*o.ReportFormat)
	}

	return nil
}

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	default:
		return 0, false
	}
}

func toDuration(v interface{}) (time.Duration, bool) {
	switch val := v.(type) {
	case time.Duration:
		return val, true
	case string:
		d, err := time.ParseDuration(val)
		return d, err == nil
	default:
		return 0, false
	}
}
