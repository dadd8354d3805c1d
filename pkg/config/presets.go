package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named set of run parameters
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Profile     string `yaml:"profile"`

	NumWheels          int     `yaml:"num_wheels,omitempty"`
	MaxRetryAttempts   int     `yaml:"max_retry_attempts,omitempty"`
	FailureProbability *int    `yaml:"failure_probability,omitempty"`
	TargetDistance     float64 `yaml:"target_distance,omitempty"`
	TargetResolved     *int    `yaml:"target_resolved,omitempty"`

	// Per-hazard failure overrides keyed by "sinking", "freewheeling", "blocked"
	HazardFailureProbability map[string]int `yaml:"hazard_failure_probability,omitempty"`
}

// Params returns the preset as simulation parameters, omitting unset fields
func (p Preset) Params() map[string]interface{} {
	params := map[string]interface{}{"profile": p.Profile}
	if p.NumWheels > 0 {
		params["num_wheels"] = p.NumWheels
	}
	if p.MaxRetryAttempts > 0 {
		params["max_retry_attempts"] = p.MaxRetryAttempts
	}
	if p.FailureProbability != nil {
		params["failure_probability"] = *p.FailureProbability
	}
	if p.TargetDistance > 0 {
		params["target_distance"] = p.TargetDistance
	}
	if p.TargetResolved != nil {
		params["target_resolved"] = *p.TargetResolved
	}
	for hazard, prob := range p.HazardFailureProbability {
		params[strings.ToLower(hazard)+"_failure_probability"] = prob
	}
	return params
}

// Config holds the saved presets
type Config struct {
	Presets  []Preset `yaml:"presets"`
	Selected string   `yaml:"selected,omitempty"`
}

// Find returns the preset with the given name, ignoring case
func (c *Config) Find(name string) (Preset, bool) {
	for _, p := range c.Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Add appends a preset, rejecting duplicate names
func (c *Config) Add(p Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if p.Profile == "" {
		return fmt.Errorf("preset %s needs a profile", p.Name)
	}
	if _, exists := c.Find(p.Name); exists {
		return fmt.Errorf("preset %s already exists", p.Name)
	}
	c.Presets = append(c.Presets, p)
	return nil
}

// Remove deletes the named preset and reports whether it existed
func (c *Config) Remove(name string) bool {
	for i, p := range c.Presets {
		if strings.EqualFold(p.Name, name) {
			c.Presets = append(c.Presets[:i], c.Presets[i+1:]...)
			if strings.EqualFold(c.Selected, name) {
				c.Selected = ""
			}
			return true
		}
	}
	return false
}

// DefaultPath returns ~/.rover-sim/presets.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".rover-sim", "presets.yaml"), nil
}

// LoadPresets loads presets from the default location
func LoadPresets() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadPresetsFromFile(path)
}

// LoadPresetsFromFile loads presets from a specific file
func LoadPresetsFromFile(path string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse presets file: %w", err)
	}

	return &config, nil
}

// SavePresets saves presets to the default location
func SavePresets(config *Config) error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return SavePresetsToFile(config, path)
}

// SavePresetsToFile saves presets to a specific file
func SavePresetsToFile(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write presets file: %w", err)
	}

	return nil
}

// getDefaultConfig returns the built-in presets
func getDefaultConfig() *Config {
	zero := 0
	return &Config{
		Presets: []Preset{
			{
				Name:        "Demo",
				Description: "Rock profile with default targets",
				Profile:     "rock",
			},
			{
				Name:           "Gauntlet",
				Description:    "Free-for-all over three distance units",
				Profile:        "ffa",
				TargetDistance: 3.0,
				TargetResolved: &zero,
			},
			{
				Name:                     "Quicksand",
				Description:              "Sinking wheels that rarely come free",
				Profile:                  "sink",
				HazardFailureProbability: map[string]int{"sinking": 60},
			},
		},
	}
}
