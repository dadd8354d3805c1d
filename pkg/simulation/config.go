package simulation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SimulationConfig represents the configuration structure for a simulation
// loaded from simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter returns the declared parameter with the given name
func (c SimulationConfig) Parameter(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// WithDefaults returns a copy of params whose defaults are replaced by the
// matching entries of defaults. Values that fail the parameter's checks are
// ignored.
func WithDefaults(params []Parameter, defaults map[string]interface{}) []Parameter {
	out := make([]Parameter, len(params))
	copy(out, params)
	for i, p := range out {
		v, ok := defaults[p.Name]
		if !ok || p.Check(v) != nil {
			continue
		}
		out[i].Default = v
	}
	return out
}

// Parameter defines a configurable parameter for a simulation
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// Parse converts raw text, from a prompt or an environment variable, into
// the parameter's type and checks it.
func (p Parameter) Parse(raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)

	var value interface{}
	var err error
	switch p.Type {
	case "integer":
		value, err = strconv.Atoi(raw)
	case "float":
		value, err = strconv.ParseFloat(raw, 64)
	case "boolean":
		value, err = strconv.ParseBool(raw)
	case "duration":
		value, err = time.ParseDuration(raw)
		if err != nil {
			err = fmt.Errorf("invalid duration format (use formats like 500ms, 5s, 1m)")
		}
	case "string":
		value = raw
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", p.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}

	return value, p.Check(value)
}

// Check validates a typed value against the parameter's range and options
func (p Parameter) Check(value interface{}) error {
	switch p.Type {
	case "integer", "float":
		v, ok := toFloat64(value)
		if !ok {
			return fmt.Errorf("%s must be a number, got %v", p.Name, value)
		}
		if lo, ok := toFloat64(p.Min); ok && v < lo {
			return fmt.Errorf("%s must be at least %v", p.Name, p.Min)
		}
		if hi, ok := toFloat64(p.Max); ok && v > hi {
			return fmt.Errorf("%s must be at most %v", p.Name, p.Max)
		}
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string, got %v", p.Name, value)
		}
		if len(p.Options) > 0 && !containsFold(p.Options, s) {
			return fmt.Errorf("%s must be one of %s", p.Name, strings.Join(p.Options, ", "))
		}
	}
	return nil
}

// DefaultString renders the default for a text prompt
func (p Parameter) DefaultString() string {
	if p.Default == nil {
		return ""
	}
	if p.Type == "integer" {
		if v, ok := toFloat64(p.Default); ok {
			return strconv.Itoa(int(v))
		}
	}
	return fmt.Sprintf("%v", p.Default)
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

func containsFold(options []string, v string) bool {
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return true
		}
	}
	return false
}
