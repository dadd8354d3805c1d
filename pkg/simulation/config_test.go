package simulation

import (
	"testing"
	"time"
)

func TestParameterParse(t *testing.T) {
	tests := []struct {
		name    string
		param   Parameter
		raw     string
		want    interface{}
		wantErr bool
	}{
		{"integer", Parameter{Name: "n", Type: "integer", Min: 1, Max: 32}, " 6 ", 6, false},
		{"integer below min", Parameter{Name: "n", Type: "integer", Min: 1}, "0", nil, true},
		{"integer not a number", Parameter{Name: "n", Type: "integer"}, "six", nil, true},
		{"float above max", Parameter{Name: "d", Type: "float", Max: 100.0}, "100.5", nil, true},
		{"float", Parameter{Name: "d", Type: "float", Min: 0.0}, "0.5", 0.5, false},
		{"duration", Parameter{Name: "i", Type: "duration"}, "250ms", 250 * time.Millisecond, false},
		{"bad duration", Parameter{Name: "i", Type: "duration"}, "soon", nil, true},
		{"boolean", Parameter{Name: "b", Type: "boolean"}, "true", true, false},
		{"option case-insensitive", Parameter{Name: "p", Type: "string", Options: []string{"rock", "ffa"}}, "FFA", "FFA", false},
		{"unknown option", Parameter{Name: "p", Type: "string", Options: []string{"rock", "ffa"}}, "lava", nil, true},
		{"unsupported type", Parameter{Name: "x", Type: "color"}, "red", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.param.Parse(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParameterCheckTypedValues(t *testing.T) {
	p := Parameter{Name: "failure_probability", Type: "integer", Min: 0, Max: 100}

	if err := p.Check(int64(40)); err != nil {
		t.Errorf("Expected int64 within range to pass: %v", err)
	}
	if err := p.Check(150); err == nil {
		t.Error("Expected 150 to be rejected")
	}
	if err := p.Check("forty"); err == nil {
		t.Error("Expected string to be rejected for integer parameter")
	}
}

func TestDefaultString(t *testing.T) {
	if got := (Parameter{Type: "integer", Default: 6.0}).DefaultString(); got != "6" {
		t.Errorf("Expected 6, got %q", got)
	}
	if got := (Parameter{Type: "duration", Default: "1s"}).DefaultString(); got != "1s" {
		t.Errorf("Expected 1s, got %q", got)
	}
	if got := (Parameter{Type: "float"}).DefaultString(); got != "" {
		t.Errorf("Expected empty default, got %q", got)
	}
}

func TestSimulationConfigParameter(t *testing.T) {
	cfg := SimulationConfig{Parameters: []Parameter{{Name: "profile"}, {Name: "seed"}}}
	if _, ok := cfg.Parameter("seed"); !ok {
		t.Error("Expected seed parameter")
	}
	if _, ok := cfg.Parameter("wheels"); ok {
		t.Error("Expected no wheels parameter")
	}
}

func TestWithDefaults(t *testing.T) {
	params := []Parameter{
		{Name: "profile", Type: "string", Default: "rock", Options: []string{"rock", "ffa"}},
		{Name: "num_wheels", Type: "integer", Default: 6, Min: 1, Max: 32},
		{Name: "cycle_interval", Type: "duration", Default: "1s"},
		{Name: "target_resolved", Type: "integer", Default: 5},
	}

	got := WithDefaults(params, map[string]interface{}{
		"profile":        "ffa",
		"num_wheels":     64,
		"cycle_interval": 250 * time.Millisecond,
		"undeclared":     true,
	})

	if got[0].Default != "ffa" {
		t.Errorf("profile default = %v, want ffa", got[0].Default)
	}
	if got[1].Default != 6 {
		t.Errorf("Expected out-of-range num_wheels to be ignored, got %v", got[1].Default)
	}
	if got[2].Default != 250*time.Millisecond {
		t.Errorf("cycle_interval default = %v, want 250ms", got[2].Default)
	}
	if got[3].Default != 5 {
		t.Errorf("target_resolved default = %v, want 5", got[3].Default)
	}
	if params[0].Default != "rock" {
		t.Error("Expected the input parameters to be left unchanged")
	}
}
