package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverIn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rover", "simulation.yaml"), `
name: Rover
parameters:
  - name: profile
    type: string
    options: [rock, ffa]
`)
	writeFile(t, filepath.Join(dir, "arm", "simulation.yaml"), "name: Arm\n")
	writeFile(t, filepath.Join(dir, "broken", "simulation.yaml"), "name: [unterminated\n")
	writeFile(t, filepath.Join(dir, "_scratch", "simulation.yaml"), "name: Hidden\n")
	writeFile(t, filepath.Join(dir, "rover", "testdata", "simulation.yaml"), "name: Fixture\n")

	infos, err := discoverIn(dir)
	if err != nil {
		t.Fatalf("discoverIn failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 simulations, got %d: %+v", len(infos), infos)
	}
	if infos[0].Config.Name != "Arm" || infos[1].Config.Name != "Rover" {
		t.Errorf("Expected sorted names Arm, Rover; got %s, %s", infos[0].Config.Name, infos[1].Config.Name)
	}
	if _, ok := infos[1].Config.Parameter("profile"); !ok {
		t.Error("Expected rover profile parameter")
	}
	if infos[1].Path != filepath.Join(dir, "rover") {
		t.Errorf("Unexpected path %s", infos[1].Path)
	}
}

func TestDiscoverSimulationsFindsRover(t *testing.T) {
	info, err := FindSimulation("Rover Hazard Traversal")
	if err != nil {
		t.Fatalf("FindSimulation failed: %v", err)
	}
	if _, ok := info.Config.Parameter("profile"); !ok {
		t.Error("Expected the rover simulation to declare a profile parameter")
	}
	if _, err := FindSimulation("Nope"); err == nil {
		t.Error("Expected error for unknown simulation")
	}
}
