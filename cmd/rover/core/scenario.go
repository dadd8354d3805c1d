package core

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/picogrid/rover-simulations/cmd/rover/eventlog"
	"github.com/picogrid/rover-simulations/pkg/logger"
)

var (
	// ErrScenarioStarted is returned by Run when the scenario already ran.
	ErrScenarioStarted = errors.New("scenario already started")

	// ErrScenarioRunning is returned by Destroy while Run is in progress.
	ErrScenarioRunning = errors.New("scenario is still running")

	// ErrScenarioDestroyed is returned by Run after Destroy.
	ErrScenarioDestroyed = errors.New("scenario destroyed")

	// ErrAborted is the default abort reason.
	ErrAborted = errors.New("scenario aborted")
)

const separator = "----------------------------------------"

// Scenario is the shared aggregate of one run. Every field below mu is
// guarded by it, including the wheels.
type Scenario struct {
	ID      string
	profile Profile
	opts    Options
	seed    int64
	log     logger.Logger
	mirror  bool

	mu                   sync.Mutex
	wheels               []Wheel
	state                ScenarioState
	outcome              Outcome
	cycleProblemCount    int
	resolvedProblemCount int
	hazardsReported      int
	cycles               int
	targetCycles         int
	totalDistance        float64
	failedWheel          int
	failedHazard         WheelState
	abortReason          error

	continueCond *sync.Cond
	completeCond *sync.Cond
	hazardConds  map[WheelState]*sync.Cond

	cycleBarrier *Barrier
	setupBarrier *Barrier
	done         chan struct{}

	rng       *rand.Rand
	queue     *eventlog.Queue
	pending   []string
	observers []Observer

	started   bool
	running   bool
	destroyed bool
}

// NewScenario creates a fresh scenario: every wheel working, counters
// zeroed and barriers sized for the wheel count.
func NewScenario(profile Profile, opts Options) (*Scenario, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Scenario{
		ID:           uuid.NewString(),
		profile:      profile,
		opts:         opts,
		seed:         seed,
		log:          logger.WithPrefix("rover"),
		wheels:       make([]Wheel, opts.NumWheels),
		state:        StateSetup,
		outcome:      OutcomeUndecided,
		failedWheel:  -1,
		failedHazard: Working,
		hazardConds:  make(map[WheelState]*sync.Cond, len(Hazards)),
		cycleBarrier: NewBarrier(opts.NumWheels + 1),
		setupBarrier: NewBarrier(len(Hazards) + 1),
		done:         make(chan struct{}),
		rng:          rand.New(rand.NewSource(seed)),
		queue:        eventlog.NewQueue(opts.QueueCapacity, opts.SlotSize),
	}
	for i := range s.wheels {
		s.wheels[i] = Wheel{ID: i, State: Working}
	}
	s.continueCond = sync.NewCond(&s.mu)
	s.completeCond = sync.NewCond(&s.mu)
	for _, h := range Hazards {
		s.hazardConds[h] = sync.NewCond(&s.mu)
	}
	if opts.TargetDistance > 0 {
		s.targetCycles = int(math.Ceil(opts.TargetDistance/opts.DistancePerCycle - 1e-9))
	}

	return s, nil
}

// WithLogger sets the console logger used by the engine threads.
func (s *Scenario) WithLogger(l logger.Logger) *Scenario {
	if l != nil {
		s.log = l
	}
	return s
}

// MirrorTranscript echoes every transcript line to the console logger at
// debug level.
func (s *Scenario) MirrorTranscript(enabled bool) *Scenario {
	s.mirror = enabled
	return s
}

// AddObserver registers o for every subsequent event.
func (s *Scenario) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Profile returns the scenario's profile.
func (s *Scenario) Profile() Profile {
	return s.profile
}

// Options returns the scenario's engine constants.
func (s *Scenario) Options() Options {
	return s.opts
}

// Seed returns the seed of the scenario's random source.
func (s *Scenario) Seed() int64 {
	return s.seed
}

// Done is closed once the scenario reaches Complete.
func (s *Scenario) Done() <-chan struct{} {
	return s.done
}

// State returns the current scenario state.
func (s *Scenario) State() ScenarioState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome returns the current outcome.
func (s *Scenario) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Snapshot returns a copy of the shared state.
func (s *Scenario) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Abort ends the run as Failed with the given reason. It is a no-op once the
// scenario is complete.
func (s *Scenario) Abort(reason error) {
	if reason == nil {
		reason = ErrAborted
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateComplete {
		return
	}
	s.abortReason = reason
	s.outcome = OutcomeFailed
	s.publishLocked("SCENARIO ABORTED: %v", reason)
	s.finishLocked()
}

// Destroy tears the scenario down after Run has returned. Calling it on a
// scenario that never ran releases its queue and barriers.
func (s *Scenario) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrScenarioRunning
	}
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	s.observers = nil
	s.queue.Close()
	s.cycleBarrier.Break()
	s.setupBarrier.Break()
	return nil
}

// isCompleteLocked is true once either target is reached or the state
// machine is terminal.
func (s *Scenario) isCompleteLocked() bool {
	if s.state == StateComplete {
		return true
	}
	if s.opts.TargetResolved > 0 && s.resolvedProblemCount >= s.opts.TargetResolved {
		return true
	}
	return s.targetCycles > 0 && s.cycles >= s.targetCycles
}

// finishLocked moves the scenario to Complete and wakes every waiter.
func (s *Scenario) finishLocked() {
	if s.state == StateComplete {
		return
	}
	s.state = StateComplete
	if s.outcome != OutcomeFailed {
		s.outcome = OutcomePassed
	}
	close(s.done)

	s.publishLocked("SCENARIO COMPLETE: %s", s.outcome)
	s.notifyLocked(Event{Kind: EventScenarioComplete, Wheel: -1})

	s.continueCond.Broadcast()
	s.completeCond.Broadcast()
	for _, c := range s.hazardConds {
		c.Broadcast()
	}
	s.cycleBarrier.Break()
	s.setupBarrier.Break()
}

// beginCycleLocked blocks a worker until it may draw for the given epoch.
// It returns false once the scenario is complete.
func (s *Scenario) beginCycleLocked(wheel, epoch int) bool {
	announced := false
	for !s.isCompleteLocked() && (s.state == StateSetup || s.state == StateProblem || s.cycles < epoch) {
		if s.state == StateProblem && !announced {
			s.publishLocked("Wheel %d: Waiting for problems to be solved...", wheel)
			announced = true
		}
		s.continueCond.Wait()
	}
	if s.isCompleteLocked() {
		s.finishLocked()
		return false
	}
	return true
}

// drawLocked draws the wheel's next state from the profile.
func (s *Scenario) drawLocked() WheelState {
	next := s.profile.Draw(s.rng.Intn(DrawRange))
	if next != Working && s.profile.OneHazardPerCycle && s.cycleProblemCount > 0 {
		return Working
	}
	return next
}

// reportHazardLocked puts wheel into hazard h and wakes h's resolver.
func (s *Scenario) reportHazardLocked(wheel int, h WheelState) {
	s.wheels[wheel].State = h
	s.state = StateProblem
	s.cycleProblemCount++
	s.hazardsReported++

	s.publishLocked("Wheel %d: %s", wheel, h.announcement())
	s.notifyLocked(Event{Kind: EventHazardReported, Wheel: wheel, Hazard: h})
	s.hazardConds[h].Signal()
}

// reportResolvedLocked returns wheel to Working after attempts tries.
func (s *Scenario) reportResolvedLocked(wheel int, h WheelState, attempts int) {
	s.wheels[wheel].State = Working
	s.resolvedProblemCount++

	s.publishLocked("%s: Problem solved for wheel %d", handlerName(h), wheel)
	s.notifyLocked(Event{Kind: EventHazardResolved, Wheel: wheel, Hazard: h, Attempt: attempts, Success: true})

	if s.isCompleteLocked() {
		s.finishLocked()
		return
	}
	if next := s.firstPendingLocked(); next >= 0 {
		s.hazardConds[s.wheels[next].State].Signal()
	} else {
		s.state = StateVectoring
	}
	s.continueCond.Broadcast()
}

// reportFailedLocked ends the scenario as Failed.
func (s *Scenario) reportFailedLocked(wheel int, h WheelState, attempts int) {
	s.outcome = OutcomeFailed
	s.failedWheel = wheel
	s.failedHazard = h

	s.publishLocked("%s: Failed to solve problem for wheel %d after %d attempts", handlerName(h), wheel, attempts)
	s.notifyLocked(Event{Kind: EventHazardFailed, Wheel: wheel, Hazard: h, Attempt: attempts})
	s.finishLocked()
}

// pendingWheelLocked returns the lowest wheel id in hazard h while the
// scenario is in Problem, or -1.
func (s *Scenario) pendingWheelLocked(h WheelState) int {
	if s.state != StateProblem {
		return -1
	}
	for i := range s.wheels {
		if s.wheels[i].State == h {
			return i
		}
	}
	return -1
}

func (s *Scenario) firstPendingLocked() int {
	for i := range s.wheels {
		if s.wheels[i].State != Working {
			return i
		}
	}
	return -1
}

// pause sleeps the inter-cycle interval. It returns false if the scenario
// completed meanwhile.
func (s *Scenario) pause() bool {
	if s.opts.CycleInterval <= 0 {
		select {
		case <-s.done:
			return false
		default:
			return true
		}
	}

	t := time.NewTimer(s.opts.CycleInterval)
	defer t.Stop()
	select {
	case <-s.done:
		return false
	case <-t.C:
		return true
	}
}

// publishLocked queues a transcript line. The queue has its own lock and
// the writer never takes the scenario lock, so blocking here is only
// backpressure. Lines published before Run are held until the writer is
// draining the queue.
func (s *Scenario) publishLocked(format string, args ...interface{}) {
	if !s.started {
		s.pending = append(s.pending, fmt.Sprintf(format, args...))
		return
	}
	_ = s.queue.Publishf(format, args...)
}

func (s *Scenario) notifyLocked(e Event) {
	if len(s.observers) == 0 {
		return
	}
	e.ScenarioID = s.ID
	e.Profile = s.profile.Name
	e.Snapshot = s.snapshotLocked()
	for _, o := range s.observers {
		o.Observe(e)
	}
}

func (s *Scenario) snapshotLocked() Snapshot {
	wheels := make([]Wheel, len(s.wheels))
	copy(wheels, s.wheels)
	return Snapshot{
		State:         s.state,
		Outcome:       s.outcome,
		Wheels:        wheels,
		CycleProblems: s.cycleProblemCount,
		Resolved:      s.resolvedProblemCount,
		Hazards:       s.hazardsReported,
		Cycle:         s.cycles,
		TotalDistance: s.totalDistance,
	}
}

// Result is what the launcher receives once a run has finished.
type Result struct {
	ScenarioID       string
	Profile          string
	Seed             int64
	Outcome          Outcome
	TotalDistance    float64
	ResolvedProblems int
	HazardsReported  int
	Cycles           int
	FailedWheel      int
	FailedHazard     WheelState
	Aborted          bool
	Reason           string
	Transcript       string
	Elapsed          time.Duration
}

func (s *Scenario) resultLocked() Result {
	r := Result{
		ScenarioID:       s.ID,
		Profile:          s.profile.Name,
		Seed:             s.seed,
		Outcome:          s.outcome,
		TotalDistance:    s.totalDistance,
		ResolvedProblems: s.resolvedProblemCount,
		HazardsReported:  s.hazardsReported,
		Cycles:           s.cycles,
		FailedWheel:      s.failedWheel,
		FailedHazard:     s.failedHazard,
		Aborted:          s.abortReason != nil,
	}

	switch {
	case s.abortReason != nil:
		r.Reason = s.abortReason.Error()
	case s.failedWheel >= 0:
		r.Reason = fmt.Sprintf("%s could not free wheel %d", handlerName(s.failedHazard), s.failedWheel)
	default:
		var reasons []string
		if s.opts.TargetResolved > 0 && s.resolvedProblemCount >= s.opts.TargetResolved {
			reasons = append(reasons, fmt.Sprintf("resolved %d problems", s.resolvedProblemCount))
		}
		if s.targetCycles > 0 && s.cycles >= s.targetCycles {
			reasons = append(reasons, fmt.Sprintf("vectored %.1f", s.totalDistance))
		}
		r.Reason = strings.Join(reasons, ", ")
	}
	return r
}
