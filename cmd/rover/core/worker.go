package core

import (
	"fmt"

	"github.com/picogrid/rover-simulations/pkg/logger"
)

// worker drives one wheel through the cycles.
type worker struct {
	s     *Scenario
	wheel int
	log   logger.Logger
}

func newWorker(s *Scenario, wheel int) *worker {
	return &worker{
		s:     s,
		wheel: wheel,
		log:   s.log.WithPrefix(fmt.Sprintf("wheel-%d", wheel)),
	}
}

func (w *worker) run() {
	for epoch := 0; ; epoch++ {
		if !w.cycle(epoch) {
			return
		}
		if _, err := w.s.cycleBarrier.Wait(); err != nil {
			w.log.Debugf("Leaving at cycle %d: %v", epoch, err)
			return
		}
		if !w.s.pause() {
			return
		}
	}
}

// cycle performs the locked part of one cycle. It returns false when the
// scenario is complete.
func (w *worker) cycle(epoch int) bool {
	s := w.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.beginCycleLocked(w.wheel, epoch) {
		return false
	}

	next := s.drawLocked()
	if next == Working {
		s.wheels[w.wheel].State = Working
		s.publishLocked("Wheel %d: Vectoring...", w.wheel)
		s.notifyLocked(Event{Kind: EventWheelVectoring, Wheel: w.wheel})
		return true
	}

	w.log.Debugf("Cycle %d: %s", epoch, next)
	s.reportHazardLocked(w.wheel, next)
	for s.wheels[w.wheel].State != Working && !s.isCompleteLocked() {
		s.continueCond.Wait()
	}
	if s.isCompleteLocked() {
		s.finishLocked()
		return false
	}
	return true
}
