package simulation

import (
	"context"
	"reflect"
	"testing"
)

type stubSimulation struct {
	name string
}

func (s *stubSimulation) Name() string                                  { return s.name }
func (s *stubSimulation) Description() string                           { return "stub" }
func (s *stubSimulation) Configure(params map[string]interface{}) error { return nil }
func (s *stubSimulation) Run(ctx context.Context) error                 { return nil }
func (s *stubSimulation) Stop() error                                   { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"rover", "alpha"} {
		name := name
		if err := r.Register(name, func() Simulation { return &stubSimulation{name: name} }); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	if err := r.Register("rover", func() Simulation { return &stubSimulation{} }); err == nil {
		t.Error("Expected duplicate registration to fail")
	}

	if got := r.List(); !reflect.DeepEqual(got, []string{"alpha", "rover"}) {
		t.Errorf("Expected sorted names, got %v", got)
	}

	sim, err := r.Get("rover")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sim.Name() != "rover" {
		t.Errorf("Expected rover, got %s", sim.Name())
	}

	other, _ := r.Get("rover")
	if sim == other {
		t.Error("Expected a new instance per Get")
	}

	if sim, err := r.Get("ROVER"); err != nil || sim.Name() != "rover" {
		t.Errorf("Expected case-insensitive lookup, got %v, %v", sim, err)
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("Expected error for unknown simulation")
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("rover", func() Simulation { return &stubSimulation{} })

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate MustRegister")
		}
	}()
	r.MustRegister("rover", func() Simulation { return &stubSimulation{} })
}
