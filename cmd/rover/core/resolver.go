package core

import (
	"sync"

	"github.com/picogrid/rover-simulations/pkg/logger"
)

// resolver clears one hazard type. The three handlers differ only in the
// hazard they serve and the condition they wait on.
type resolver struct {
	s      *Scenario
	hazard WheelState
	name   string
	cond   *sync.Cond
	log    logger.Logger
}

func newResolver(s *Scenario, hazard WheelState) *resolver {
	name := handlerName(hazard)
	return &resolver{
		s:      s,
		hazard: hazard,
		name:   name,
		cond:   s.hazardConds[hazard],
		log:    s.log.WithPrefix(name),
	}
}

func (r *resolver) run() {
	if _, err := r.s.setupBarrier.Wait(); err != nil {
		return
	}

	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		wheel, ok := r.awaitLocked()
		if !ok {
			s.finishLocked()
			return
		}
		r.resolveLocked(wheel)
	}
}

// awaitLocked waits until a wheel is in this resolver's hazard. It returns
// false once the scenario is complete.
func (r *resolver) awaitLocked() (int, bool) {
	s := r.s
	if !s.isCompleteLocked() {
		s.publishLocked("%s: Waiting for signal...", r.name)
	}
	for {
		if s.isCompleteLocked() {
			return -1, false
		}
		if wheel := s.pendingWheelLocked(r.hazard); wheel >= 0 {
			return wheel, true
		}
		r.cond.Wait()
	}
}

// resolveLocked makes up to MaxRetryAttempts attempts on wheel.
func (r *resolver) resolveLocked(wheel int) {
	s := r.s
	failure := s.opts.FailureProbabilityFor(r.hazard)
	s.publishLocked("%s: Resolving problem for wheel %d", r.name, wheel)

	for attempt := 1; attempt <= s.opts.MaxRetryAttempts; attempt++ {
		ok := s.rng.Intn(100) >= failure
		s.notifyLocked(Event{Kind: EventResolveAttempt, Wheel: wheel, Hazard: r.hazard, Attempt: attempt, Success: ok})
		if ok {
			r.log.Debugf("Wheel %d freed on attempt %d", wheel, attempt)
			s.reportResolvedLocked(wheel, r.hazard, attempt)
			return
		}
		s.publishLocked("%s: Failed to solve problem for wheel %d, attempt: %d", r.name, wheel, attempt)
	}

	r.log.Warnf("Wheel %d could not be freed after %d attempts", wheel, s.opts.MaxRetryAttempts)
	s.reportFailedLocked(wheel, r.hazard, s.opts.MaxRetryAttempts)
}
