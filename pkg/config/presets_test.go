package config

import (
	"path/filepath"
	"testing"
)

func TestLoadPresetsFromMissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadPresetsFromFile(filepath.Join(t.TempDir(), "presets.yaml"))
	if err != nil {
		t.Fatalf("LoadPresetsFromFile failed: %v", err)
	}
	if len(config.Presets) != 3 {
		t.Fatalf("Expected 3 default presets, got %d", len(config.Presets))
	}
	if _, ok := config.Find("gauntlet"); !ok {
		t.Error("Expected case-insensitive lookup of Gauntlet")
	}
}

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "presets.yaml")
	fail := 100

	config := &Config{}
	if err := config.Add(Preset{
		Name:               "Stuck",
		Profile:            "sink",
		NumWheels:          4,
		FailureProbability: &fail,
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	config.Selected = "Stuck"

	if err := SavePresetsToFile(config, path); err != nil {
		t.Fatalf("SavePresetsToFile failed: %v", err)
	}

	loaded, err := LoadPresetsFromFile(path)
	if err != nil {
		t.Fatalf("LoadPresetsFromFile failed: %v", err)
	}
	p, ok := loaded.Find("Stuck")
	if !ok {
		t.Fatal("Expected saved preset")
	}
	if p.NumWheels != 4 || p.FailureProbability == nil || *p.FailureProbability != 100 {
		t.Errorf("Unexpected preset after reload: %+v", p)
	}
	if loaded.Selected != "Stuck" {
		t.Errorf("Expected selected Stuck, got %s", loaded.Selected)
	}
}

func TestPresetAddRemove(t *testing.T) {
	config := getDefaultConfig()
	config.Selected = "Demo"

	if err := config.Add(Preset{Name: "demo", Profile: "rock"}); err == nil {
		t.Error("Expected duplicate name to be rejected")
	}
	if err := config.Add(Preset{Name: "NoProfile"}); err == nil {
		t.Error("Expected preset without profile to be rejected")
	}

	if !config.Remove("DEMO") {
		t.Fatal("Expected Remove to find Demo")
	}
	if config.Selected != "" {
		t.Errorf("Expected selection cleared, got %s", config.Selected)
	}
	if config.Remove("Demo") {
		t.Error("Expected second Remove to report false")
	}
}

func TestPresetParams(t *testing.T) {
	zero := 0
	p := Preset{
		Profile:                  "ffa",
		TargetDistance:           2.5,
		TargetResolved:           &zero,
		HazardFailureProbability: map[string]int{"Blocked": 90},
	}

	params := p.Params()
	if params["profile"] != "ffa" {
		t.Errorf("Expected profile ffa, got %v", params["profile"])
	}
	if params["target_distance"] != 2.5 {
		t.Errorf("Expected target distance 2.5, got %v", params["target_distance"])
	}
	if params["target_resolved"] != 0 {
		t.Errorf("Expected explicit zero target resolved, got %v", params["target_resolved"])
	}
	if params["blocked_failure_probability"] != 90 {
		t.Errorf("Expected blocked override, got %v", params["blocked_failure_probability"])
	}
	if _, ok := params["num_wheels"]; ok {
		t.Error("Expected unset wheel count to be omitted")
	}
}
