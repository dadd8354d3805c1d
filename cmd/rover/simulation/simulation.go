package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/picogrid/rover-simulations/cmd/rover/config"
	"github.com/picogrid/rover-simulations/cmd/rover/core"
	"github.com/picogrid/rover-simulations/cmd/rover/reporting"
	"github.com/picogrid/rover-simulations/pkg/logger"
	"github.com/picogrid/rover-simulations/pkg/simulation"
)

// Name is the registry name of the rover simulation.
const Name = "Rover Hazard Traversal"

// ErrStopped is the abort reason recorded when Stop interrupts a run.
var ErrStopped = errors.New("simulation stopped")

// RoverSimulation runs one rover scenario per Run using the configured
// profile and records its metrics in a private registry.
type RoverSimulation struct {
	mu       sync.Mutex
	config   *config.SimulationConfig
	scenario *core.Scenario
	stopped  bool
	last     *core.Result

	registry  *prometheus.Registry
	collector *reporting.Collector
	outcomes  reporting.OutcomeCounts

	out io.Writer
}

// NewRoverSimulation creates a new instance of the rover simulation
func NewRoverSimulation() simulation.Simulation {
	return newRoverSimulation()
}

func newRoverSimulation() *RoverSimulation {
	registry := prometheus.NewRegistry()
	collector, err := reporting.NewCollector(registry)
	if err != nil {
		// A fresh registry cannot already hold these collectors
		panic(err)
	}
	return &RoverSimulation{
		config:    config.GetDefaultConfig(),
		registry:  registry,
		collector: collector,
		outcomes:  make(reporting.OutcomeCounts),
		out:       os.Stdout,
	}
}

// Name returns the simulation name
func (s *RoverSimulation) Name() string {
	return Name
}

// Description returns the simulation description
func (s *RoverSimulation) Description() string {
	return "Six-wheeled rover vectoring across terrain while hazard handlers free stuck wheels"
}

// Configure loads the rover configuration and applies params on top of it.
// The optional "config_file" parameter names the YAML file to start from.
func (s *RoverSimulation) Configure(params map[string]interface{}) error {
	logger.Info("Configuring rover simulation...")

	path, _ := params["config_file"].(string)
	cfg, err := config.LoadConfigWithOverrides(path, params)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.ConsoleLevel))
	logger.Debugf("Configuration:\n%s", cfg)

	s.mu.Lock()
	s.config = cfg
	s.stopped = false
	s.mu.Unlock()

	logger.Infof("Configuration: profile %s, %d wheels, %d retries at %d%% failure",
		cfg.Simulation.Profile, cfg.Engine.NumWheels, cfg.Resolution.MaxRetryAttempts, cfg.Resolution.FailureProbability)
	return nil
}

// ParameterDefaults loads the configuration named by known["config_file"],
// or the default one, so its values become the prompt defaults.
func (s *RoverSimulation) ParameterDefaults(known map[string]interface{}) (map[string]interface{}, error) {
	path, _ := known["config_file"].(string)
	cfg, err := config.LoadConfigOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.ToParams(), nil
}

// Run executes one scenario and prints its summary. A FAILED outcome is a
// normal result of the simulation and is not reported as an error.
func (s *RoverSimulation) Run(ctx context.Context) error {
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	profile, err := cfg.Profile()
	if err != nil {
		return err
	}
	opts := cfg.ToOptions()

	scenario, err := core.NewScenario(profile, opts)
	if err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	scenario.WithLogger(logger.WithPrefix("rover")).MirrorTranscript(cfg.Logging.MirrorTranscript)

	tally := reporting.NewTally()
	timeline := reporting.NewTimeline()
	scenario.AddObserver(s.collector)
	scenario.AddObserver(tally)
	scenario.AddObserver(timeline)
	if cfg.Logging.ShowProgress && !cfg.Logging.MirrorTranscript {
		if progress := reporting.NewCycleProgress(opts, profile.Name); progress != nil {
			scenario.AddObserver(progress)
		}
	}

	s.mu.Lock()
	s.scenario = scenario
	stopped := s.stopped
	s.stopped = false
	s.mu.Unlock()
	if stopped {
		scenario.Abort(ErrStopped)
	}

	logger.Infof("Starting scenario %s with profile %s", scenario.ID, profile.Name)
	result, runErr := scenario.RunTranscript(ctx, cfg.Output.TranscriptDir)

	s.mu.Lock()
	s.scenario = nil
	if runErr == nil || result.ScenarioID != "" {
		s.last = &result
		s.outcomes.Add(result)
	}
	s.mu.Unlock()

	if err := scenario.Destroy(); err != nil {
		logger.Warnf("Failed to destroy scenario: %v", err)
	}
	if runErr != nil {
		return fmt.Errorf("scenario %s: %w", scenario.ID, runErr)
	}

	reporting.PrintSummary(s.out, result, tally)

	if cfg.Output.MetricsFile != "" {
		if err := s.collector.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return err
		}
		logger.Debugf("Metrics written to %s", cfg.Output.MetricsFile)
	}

	if cfg.Output.ReportDir != "" {
		report := reporting.BuildReport(result, opts, tally, timeline)
		path, err := reporting.SaveReport(report, reporting.ReportConfig{
			OutputDir: cfg.Output.ReportDir,
			Format:    cfg.Output.ReportFormat,
		})
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		logger.Successf("Report saved to: %s", path)
	}

	if result.Aborted {
		logger.Warnf("Scenario aborted: %s", result.Reason)
	}
	return nil
}

// Stop aborts the running scenario. A Stop that arrives before Run has
// created its scenario aborts that scenario as soon as it exists.
func (s *RoverSimulation) Stop() error {
	s.mu.Lock()
	scenario := s.scenario
	if scenario == nil {
		s.stopped = true
	}
	s.mu.Unlock()

	if scenario != nil {
		scenario.Abort(ErrStopped)
	}
	return nil
}

// LastResult returns the result of the most recent completed run
func (s *RoverSimulation) LastResult() (core.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return core.Result{}, false
	}
	return *s.last, true
}

// PrintOutcomes writes the PASSED/FAILED counts of every run so far
func (s *RoverSimulation) PrintOutcomes(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes.Print(w)
}

// Gatherer exposes the simulation's metrics registry
func (s *RoverSimulation) Gatherer() prometheus.Gatherer {
	return s.registry
}

func init() {
	simulation.DefaultRegistry.MustRegister(Name, NewRoverSimulation)
}
