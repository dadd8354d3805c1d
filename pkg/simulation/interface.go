package simulation

import "context"

// Simulation defines the interface that all simulations must implement
type Simulation interface {
	// Name returns the name of the simulation
	Name() string

	// Description returns a brief description of what the simulation does
	Description() string

	// Configure sets up the simulation with the provided parameters
	Configure(params map[string]interface{}) error

	// Run executes the simulation until it completes or ctx is cancelled
	Run(ctx context.Context) error

	// Stop gracefully shuts down the simulation
	Stop() error
}

// Defaulter is implemented by simulations whose parameter defaults come from
// their own configuration file rather than from simulation.yaml alone. known
// holds the values already fixed by flags or a preset, such as config_file.
type Defaulter interface {
	ParameterDefaults(known map[string]interface{}) (map[string]interface{}, error)
}
