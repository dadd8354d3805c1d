package core

import "fmt"

// WheelState is the per-cycle condition of a wheel. Anything other than
// Working is a hazard that must be resolved before the rover advances.
type WheelState int

const (
	Working WheelState = iota
	Sinking
	Freewheeling
	Blocked
)

// Hazards lists the hazard states, one resolver each, in resolver start order.
var Hazards = []WheelState{Sinking, Freewheeling, Blocked}

func (w WheelState) String() string {
	switch w {
	case Working:
		return "working"
	case Sinking:
		return "sinking"
	case Freewheeling:
		return "freewheeling"
	case Blocked:
		return "blocked"
	default:
		return fmt.Sprintf("WheelState(%d)", int(w))
	}
}

// IsHazard reports whether w requires a resolver.
func (w WheelState) IsHazard() bool {
	return w == Sinking || w == Freewheeling || w == Blocked
}

// announcement is the transcript verb for a wheel that drew w.
func (w WheelState) announcement() string {
	switch w {
	case Sinking:
		return "Sinking..."
	case Freewheeling:
		return "FreeWheeling..."
	case Blocked:
		return "Blocked..."
	default:
		return "Vectoring..."
	}
}

// handlerName is the transcript name of the resolver for hazard w.
func handlerName(w WheelState) string {
	switch w {
	case Sinking:
		return "SinkHandler"
	case Freewheeling:
		return "FreeHandler"
	case Blocked:
		return "BlockHandler"
	default:
		return "Handler"
	}
}

// ParseWheelState parses the lower-case hazard names used in config files.
func ParseWheelState(s string) (WheelState, error) {
	for _, w := range []WheelState{Working, Sinking, Freewheeling, Blocked} {
		if w.String() == s {
			return w, nil
		}
	}
	return Working, fmt.Errorf("unknown wheel state %q", s)
}

// ScenarioState is the shared state machine: Setup → Vectoring ⇄ Problem → Complete.
type ScenarioState int

const (
	StateSetup ScenarioState = iota
	StateVectoring
	StateProblem
	StateComplete
)

func (s ScenarioState) String() string {
	switch s {
	case StateSetup:
		return "SETUP"
	case StateVectoring:
		return "VECTORING"
	case StateProblem:
		return "PROBLEM"
	case StateComplete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("ScenarioState(%d)", int(s))
	}
}

// Outcome is the final verdict of a run.
type Outcome int

const (
	OutcomeUndecided Outcome = iota
	OutcomePassed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUndecided:
		return "UNDECIDED"
	case OutcomePassed:
		return "PASSED"
	case OutcomeFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Wheel is one drive unit. It has no logic of its own and is only read or
// written under the scenario lock.
type Wheel struct {
	ID    int
	State WheelState
}
