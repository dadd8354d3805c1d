package core

import "github.com/picogrid/rover-simulations/pkg/logger"

// monitor closes each cycle after the barrier trips.
type monitor struct {
	s   *Scenario
	log logger.Logger
}

func newMonitor(s *Scenario) *monitor {
	return &monitor{s: s, log: s.log.WithPrefix("monitor")}
}

func (m *monitor) run() {
	if _, err := m.s.setupBarrier.Wait(); err != nil {
		return
	}
	m.startVectoring()

	for {
		if _, err := m.s.cycleBarrier.Wait(); err != nil {
			return
		}
		if !m.closeCycle() {
			return
		}
	}
}

func (m *monitor) startVectoring() {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSetup {
		s.state = StateVectoring
		s.notifyLocked(Event{Kind: EventSetupComplete, Wheel: -1})
	}
	s.continueCond.Broadcast()
}

// closeCycle advances distance and evaluates termination. It returns false
// once the scenario is complete.
func (m *monitor) closeCycle() bool {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateComplete {
		return false
	}

	s.cycles++
	s.totalDistance = float64(s.cycles) * s.opts.DistancePerCycle
	s.cycleProblemCount = 0

	s.publishLocked("TOTAL DISTANCE VECTORED: %f", s.totalDistance)
	s.publishLocked(separator)
	m.log.Debugf("Cycle %d closed at %.2f", s.cycles, s.totalDistance)
	s.notifyLocked(Event{Kind: EventCycleComplete, Wheel: -1})

	if s.isCompleteLocked() {
		s.finishLocked()
		return false
	}
	s.continueCond.Broadcast()
	return true
}
