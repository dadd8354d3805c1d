package core

import (
	"fmt"
	"time"

	"github.com/picogrid/rover-simulations/cmd/rover/eventlog"
)

// Options holds the engine constants for one scenario.
type Options struct {
	NumWheels        int
	MaxRetryAttempts int

	// FailureProbability is the chance, in percent, that a single
	// resolution attempt fails. HazardFailureProbability overrides it per
	// hazard type.
	FailureProbability       int
	HazardFailureProbability map[WheelState]int

	TargetDistance   float64
	TargetResolved   int
	DistancePerCycle float64
	CycleInterval    time.Duration

	QueueCapacity int
	SlotSize      int

	// Seed for the scenario's random source; 0 seeds from the clock.
	Seed int64
}

// DefaultOptions returns the standard rover configuration.
func DefaultOptions() Options {
	return Options{
		NumWheels:          6,
		MaxRetryAttempts:   3,
		FailureProbability: 20,
		TargetDistance:     1.0,
		TargetResolved:     5,
		DistancePerCycle:   0.1,
		CycleInterval:      time.Second,
		QueueCapacity:      eventlog.DefaultCapacity,
		SlotSize:           eventlog.DefaultSlotSize,
	}
}

// Validate checks the options are usable.
func (o Options) Validate() error {
	if o.NumWheels < 1 {
		return fmt.Errorf("number of wheels must be positive")
	}
	if o.MaxRetryAttempts < 1 {
		return fmt.Errorf("max retry attempts must be positive")
	}
	if o.FailureProbability < 0 || o.FailureProbability > 100 {
		return fmt.Errorf("failure probability must be between 0 and 100")
	}
	for h, p := range o.HazardFailureProbability {
		if !h.IsHazard() {
			return fmt.Errorf("failure probability override for non-hazard state %s", h)
		}
		if p < 0 || p > 100 {
			return fmt.Errorf("%s failure probability must be between 0 and 100", h)
		}
	}
	if o.TargetDistance <= 0 && o.TargetResolved <= 0 {
		return fmt.Errorf("at least one of target distance or target resolved problems must be positive")
	}
	if o.DistancePerCycle <= 0 {
		return fmt.Errorf("distance per cycle must be positive")
	}
	if o.CycleInterval < 0 {
		return fmt.Errorf("cycle interval must not be negative")
	}
	if o.QueueCapacity < 0 || o.SlotSize < 0 {
		return fmt.Errorf("event queue geometry must not be negative")
	}
	return nil
}

// FailureProbabilityFor returns the per-attempt failure chance for hazard h.
func (o Options) FailureProbabilityFor(h WheelState) int {
	if p, ok := o.HazardFailureProbability[h]; ok {
		return p
	}
	return o.FailureProbability
}
