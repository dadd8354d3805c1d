package reporting

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
)

// Collector exposes scenario metrics. It implements core.Observer, so it
// can be attached to any number of scenarios sharing one registry.
type Collector struct {
	gatherer prometheus.Gatherer

	HazardsReported    *prometheus.CounterVec
	HazardsResolved    *prometheus.CounterVec
	HazardsFailed      *prometheus.CounterVec
	ResolutionAttempts *prometheus.HistogramVec
	Cycles             *prometheus.CounterVec
	DistanceVectored   *prometheus.GaugeVec
	Scenarios          *prometheus.CounterVec
}

// NewCollector registers rover metrics against the provided registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	reported, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rover_hazards_reported_total",
		Help: "Hazards reported by wheel workers.",
	}, []string{"profile", "hazard"}), "rover_hazards_reported_total")
	if err != nil {
		return nil, err
	}

	resolved, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rover_hazards_resolved_total",
		Help: "Hazards cleared by a resolver.",
	}, []string{"profile", "hazard"}), "rover_hazards_resolved_total")
	if err != nil {
		return nil, err
	}

	failed, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rover_hazards_failed_total",
		Help: "Hazards a resolver could not clear within the retry bound.",
	}, []string{"profile", "hazard"}), "rover_hazards_failed_total")
	if err != nil {
		return nil, err
	}

	attempts, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rover_resolution_attempts",
		Help:    "Attempts spent per resolved or failed hazard.",
		Buckets: []float64{1, 2, 3, 5, 8},
	}, []string{"profile", "hazard"}), "rover_resolution_attempts")
	if err != nil {
		return nil, err
	}

	cycles, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rover_cycles_total",
		Help: "Completed barrier cycles.",
	}, []string{"profile"}), "rover_cycles_total")
	if err != nil {
		return nil, err
	}

	distance, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rover_distance_vectored",
		Help: "Total distance vectored by the most recent scenario of each profile.",
	}, []string{"profile"}), "rover_distance_vectored")
	if err != nil {
		return nil, err
	}

	scenarios, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rover_scenarios_total",
		Help: "Completed scenarios by outcome.",
	}, []string{"profile", "outcome"}), "rover_scenarios_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		HazardsReported:    reported,
		HazardsResolved:    resolved,
		HazardsFailed:      failed,
		ResolutionAttempts: attempts,
		Cycles:             cycles,
		DistanceVectored:   distance,
		Scenarios:          scenarios,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Observe records one scenario event.
func (c *Collector) Observe(e core.Event) {
	if c == nil {
		return
	}

	switch e.Kind {
	case core.EventHazardReported:
		c.HazardsReported.WithLabelValues(e.Profile, e.Hazard.String()).Inc()
	case core.EventHazardResolved:
		c.HazardsResolved.WithLabelValues(e.Profile, e.Hazard.String()).Inc()
		c.ResolutionAttempts.WithLabelValues(e.Profile, e.Hazard.String()).Observe(float64(e.Attempt))
	case core.EventHazardFailed:
		c.HazardsFailed.WithLabelValues(e.Profile, e.Hazard.String()).Inc()
		c.ResolutionAttempts.WithLabelValues(e.Profile, e.Hazard.String()).Observe(float64(e.Attempt))
	case core.EventCycleComplete:
		c.Cycles.WithLabelValues(e.Profile).Inc()
		c.DistanceVectored.WithLabelValues(e.Profile).Set(e.Snapshot.TotalDistance)
	case core.EventScenarioComplete:
		c.DistanceVectored.WithLabelValues(e.Profile).Set(e.Snapshot.TotalDistance)
		c.Scenarios.WithLabelValues(e.Profile, e.Snapshot.Outcome.String()).Inc()
	}
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.Gatherer()); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
