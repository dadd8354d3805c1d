package simulation

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry manages available simulations
type Registry struct {
	mu          sync.RWMutex
	simulations map[string]func() Simulation
}

// NewRegistry creates a new simulation registry
func NewRegistry() *Registry {
	return &Registry{
		simulations: make(map[string]func() Simulation),
	}
}

// Register adds a simulation to the registry
func (r *Registry) Register(name string, factory func() Simulation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.simulations[name]; exists {
		return fmt.Errorf("simulation %s already registered", name)
	}

	r.simulations[name] = factory
	return nil
}

// Get returns a new instance of the requested simulation. Names match
// exactly first, then ignoring case.
func (r *Registry) Get(name string) (Simulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if factory, exists := r.simulations[name]; exists {
		return factory(), nil
	}
	for registered, factory := range r.simulations {
		if strings.EqualFold(registered, name) {
			return factory(), nil
		}
	}

	return nil, fmt.Errorf("simulation %s not found", name)
}

// List returns all registered simulation names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.simulations))
	for name := range r.simulations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustRegister is Register for package init functions
func (r *Registry) MustRegister(name string, factory func() Simulation) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// DefaultRegistry is the global simulation registry
var DefaultRegistry = NewRegistry()
