package core

// EventKind identifies a scenario transition.
type EventKind int

const (
	EventSetupComplete EventKind = iota
	EventWheelVectoring
	EventHazardReported
	EventResolveAttempt
	EventHazardResolved
	EventHazardFailed
	EventCycleComplete
	EventScenarioComplete
)

func (k EventKind) String() string {
	switch k {
	case EventSetupComplete:
		return "setup_complete"
	case EventWheelVectoring:
		return "wheel_vectoring"
	case EventHazardReported:
		return "hazard_reported"
	case EventResolveAttempt:
		return "resolve_attempt"
	case EventHazardResolved:
		return "hazard_resolved"
	case EventHazardFailed:
		return "hazard_failed"
	case EventCycleComplete:
		return "cycle_complete"
	case EventScenarioComplete:
		return "scenario_complete"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the scenario's shared state at one instant.
type Snapshot struct {
	State         ScenarioState
	Outcome       Outcome
	Wheels        []Wheel
	CycleProblems int
	Resolved      int
	Hazards       int
	Cycle         int
	TotalDistance float64
}

// PendingWheels counts wheels currently in a hazard state.
func (s Snapshot) PendingWheels() int {
	n := 0
	for _, w := range s.Wheels {
		if w.State != Working {
			n++
		}
	}
	return n
}

// Event describes one transition. Wheel is -1 for scenario-wide events.
type Event struct {
	Kind       EventKind
	ScenarioID string
	Profile    string
	Wheel      int
	Hazard     WheelState

	// Attempt is the attempt number for EventResolveAttempt and the total
	// attempts spent for EventHazardResolved and EventHazardFailed.
	Attempt int
	Success bool

	Snapshot Snapshot
}

// Observer receives every scenario event. Observe is called with the
// scenario lock held, so it must return quickly and must not call back
// into the scenario.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}
