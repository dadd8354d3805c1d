package utils

import (
	"testing"
	"time"

	"github.com/picogrid/rover-simulations/pkg/simulation"
)

func TestEnvKey(t *testing.T) {
	if got := EnvKey("failure_probability"); got != "ROVER_FAILURE_PROBABILITY" {
		t.Errorf("Expected ROVER_FAILURE_PROBABILITY, got %s", got)
	}
}

func TestPromptForParametersSkipPrompts(t *testing.T) {
	t.Setenv(EnvSkipPrompts, "true")
	t.Setenv("ROVER_NUM_WHEELS", "4")
	t.Setenv("ROVER_CYCLE_INTERVAL", "250ms")
	t.Setenv("ROVER_TARGET_DISTANCE", "0.5")

	params := []simulation.Parameter{
		{Name: "profile", Type: "string", Default: "rock", Options: []string{"rock", "sink", "free", "ffa"}},
		{Name: "num_wheels", Type: "integer", Default: 6},
		{Name: "cycle_interval", Type: "duration", Default: "1s"},
		{Name: "target_distance", Type: "float", Default: 1.0},
		{Name: "mirror_transcript", Type: "boolean"},
		{Name: "seed", Type: "integer", Default: 1},
	}

	values, err := PromptForParameters(params, map[string]interface{}{"seed": 99})
	if err != nil {
		t.Fatalf("PromptForParameters failed: %v", err)
	}

	if values["profile"] != "rock" {
		t.Errorf("Expected default profile rock, got %v", values["profile"])
	}
	if values["num_wheels"] != 4 {
		t.Errorf("Expected 4 wheels from env, got %v", values["num_wheels"])
	}
	if values["cycle_interval"] != 250*time.Millisecond {
		t.Errorf("Expected 250ms from env, got %v", values["cycle_interval"])
	}
	if values["target_distance"] != 0.5 {
		t.Errorf("Expected 0.5 from env, got %v", values["target_distance"])
	}
	if _, ok := values["mirror_transcript"]; ok {
		t.Error("Expected optional parameter without default to be omitted")
	}
	if values["seed"] != 99 {
		t.Errorf("Expected known seed 99 to win, got %v", values["seed"])
	}
}

func TestPromptForParametersRequiredMissing(t *testing.T) {
	t.Setenv(EnvSkipPrompts, "true")

	_, err := PromptForParameters([]simulation.Parameter{
		{Name: "profile", Type: "string", Required: true},
	}, nil)
	if err == nil {
		t.Error("Expected error for required parameter without value")
	}
}

func TestPromptForParametersChecksKnownValues(t *testing.T) {
	t.Setenv(EnvSkipPrompts, "true")

	params := []simulation.Parameter{
		{Name: "failure_probability", Type: "integer", Min: 0, Max: 100, Default: 20},
	}
	if _, err := PromptForParameters(params, map[string]interface{}{"failure_probability": 150}); err == nil {
		t.Error("Expected out-of-range known value to be rejected")
	}
}

func TestPromptForParametersRejectsBadEnv(t *testing.T) {
	t.Setenv(EnvSkipPrompts, "true")
	t.Setenv("ROVER_PROFILE", "lava")

	_, err := PromptForParameters([]simulation.Parameter{
		{Name: "profile", Type: "string", Default: "rock", Options: []string{"rock", "ffa"}},
	}, nil)
	if err == nil {
		t.Error("Expected error for value outside options")
	}
}

func TestMatchFold(t *testing.T) {
	options := []string{"rock", "ffa"}
	if got := matchFold(options, "FFA"); got != "ffa" {
		t.Errorf("Expected ffa, got %q", got)
	}
	if containsFold(options, "lava") {
		t.Error("Expected lava to be absent")
	}
}
