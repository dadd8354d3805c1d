package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/picogrid/rover-simulations/cmd/rover/eventlog"
)

// Run executes the scenario to completion, writing the transcript to sink.
// It starts the transcript writer, the resolvers, the monitor and then the
// wheel workers, waits for Complete and joins every thread before
// returning. Cancelling ctx aborts the run with a Failed outcome.
func (s *Scenario) Run(ctx context.Context, sink io.Writer) (Result, error) {
	s.mu.Lock()
	switch {
	case s.destroyed:
		s.mu.Unlock()
		return Result{}, ErrScenarioDestroyed
	case s.started:
		s.mu.Unlock()
		return Result{}, ErrScenarioStarted
	}
	s.started = true
	s.running = true
	s.mu.Unlock()

	start := time.Now()

	writer := eventlog.NewWriter(s.queue, sink)
	if s.mirror {
		writer = writer.WithMirror(s.log.WithPrefix("transcript"))
	}
	writerDone := make(chan error, 1)
	go func() {
		writerDone <- writer.Run()
	}()

	s.log.Debugf("Starting scenario %s (%s, seed %d)", s.ID, s.profile.Name, s.seed)
	s.mu.Lock()
	s.publishLocked("SCENARIO %s: %s", s.profile.Name, s.ID)
	for _, line := range s.pending {
		_ = s.queue.Publish(line)
	}
	s.pending = nil
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		s.Abort(context.Cause(ctx))
	})
	defer stop()

	var wg sync.WaitGroup
	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	for _, h := range Hazards {
		spawn(newResolver(s, h).run)
	}
	spawn(newMonitor(s).run)
	for i := 0; i < s.opts.NumWheels; i++ {
		spawn(newWorker(s, i).run)
	}

	s.mu.Lock()
	for s.state != StateComplete {
		s.completeCond.Wait()
	}
	s.mu.Unlock()

	wg.Wait()

	s.mu.Lock()
	result := s.resultLocked()
	s.mu.Unlock()
	result.Elapsed = time.Since(start)

	s.queue.Close()
	werr := <-writerDone

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if werr != nil {
		return result, fmt.Errorf("transcript: %w", werr)
	}
	return result, nil
}

// RunTranscript runs the scenario with its transcript appended to a file in
// dir named after the profile and the start time. Failing to open the file
// aborts before any thread starts.
func (s *Scenario) RunTranscript(ctx context.Context, dir string) (Result, error) {
	f, err := eventlog.OpenTranscript(dir, s.profile.Name, time.Now())
	if err != nil {
		return Result{}, err
	}

	result, runErr := s.Run(ctx, f)
	result.Transcript = f.Name()
	if err := f.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to close transcript: %w", err)
	}
	return result, runErr
}
