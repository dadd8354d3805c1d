package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
	"github.com/picogrid/rover-simulations/pkg/config"
	"github.com/picogrid/rover-simulations/pkg/logger"
	"github.com/picogrid/rover-simulations/pkg/simulation"
	"github.com/picogrid/rover-simulations/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/rover-simulations/cmd/rover/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long:  `Run a simulation interactively or with specified parameters`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("profile", "p", "", "terrain profile (rock, sink, free, ffa)")
	runCmd.Flags().String("config", "", "rover config file (YAML)")
	runCmd.Flags().String("preset", "", "named preset from $HOME/.rover-sim/presets.yaml")
	runCmd.Flags().String("transcript-dir", "", "directory for scenario transcripts")
	runCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file after each run")
	runCmd.Flags().String("report-dir", "", "write an after-run report to this directory")
	runCmd.Flags().Int64("seed", 0, "random seed (0 picks one)")
	runCmd.Flags().Bool("repeat", false, "offer to run another scenario when one completes")

	_ = viper.BindPFlag("transcript_dir", runCmd.Flags().Lookup("transcript-dir"))
	_ = viper.BindPFlag("metrics_file", runCmd.Flags().Lookup("metrics-file"))
	_ = viper.BindPFlag("report_dir", runCmd.Flags().Lookup("report-dir"))
}

// outcomePrinter is implemented by simulations that summarise repeated runs
type outcomePrinter interface {
	PrintOutcomes(w io.Writer)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simName, err := selectSimulation(cmd)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	parameters := simulationParameters(simName)

	known, err := knownParameters(cmd)
	if err != nil {
		return err
	}

	// A simulation's own config file supplies the defaults, so values it
	// sets are not replaced by those of simulation.yaml
	if d, ok := sim.(simulation.Defaulter); ok {
		defaults, err := d.ParameterDefaults(known)
		if err != nil {
			return err
		}
		parameters = simulation.WithDefaults(parameters, defaults)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("\nReceived interrupt signal, stopping simulation...")
		if err := sim.Stop(); err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
		}
		cancel()
	}()

	repeat, _ := cmd.Flags().GetBool("repeat")
	runs := 0
	for {
		if _, ok := known["profile"]; !ok {
			profile, err := selectProfile(defaultProfile(parameters))
			if err != nil {
				return fmt.Errorf("failed to select profile: %w", err)
			}
			if profile != "" {
				known["profile"] = profile
			}
		}

		params, err := utils.PromptForParameters(parameters, known)
		if err != nil {
			return fmt.Errorf("failed to get parameters: %w", err)
		}

		if err := sim.Configure(params); err != nil {
			return fmt.Errorf("failed to configure simulation: %w", err)
		}

		runs++
		logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
		if repeat {
			logger.Progressf("Run %d", runs)
		}
		if err := sim.Run(ctx); err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}

		if !repeat || ctx.Err() != nil || utils.SkipPrompts() {
			break
		}

		var again bool
		if err := survey.AskOne(&survey.Confirm{Message: "Run another scenario?", Default: true}, &again); err != nil {
			return err
		}
		if !again {
			break
		}
		// Ask for the profile again on the next pass
		delete(known, "profile")
	}

	if p, ok := sim.(outcomePrinter); ok && repeat {
		logger.LogSubSection("Outcomes")
		p.PrintOutcomes(os.Stdout)
	}

	logger.Success("Simulation completed successfully")
	return nil
}

// simulationParameters returns the parameters declared in the simulation's
// simulation.yaml, or none when the file cannot be found.
func simulationParameters(simName string) []simulation.Parameter {
	info, err := utils.FindSimulation(simName)
	if err != nil {
		logger.Warnf("%v, using defaults", err)
		return nil
	}
	return info.Config.Parameters
}

// knownParameters collects values fixed by flags, settings or a preset, in
// increasing order of precedence: preset, then flags.
func knownParameters(cmd *cobra.Command) (map[string]interface{}, error) {
	known := make(map[string]interface{})

	if name, _ := cmd.Flags().GetString("preset"); name != "" {
		presets, err := config.LoadPresets()
		if err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
		preset, ok := presets.Find(name)
		if !ok {
			return nil, fmt.Errorf("preset %s not found", name)
		}
		logger.Infof("Using preset %s", preset.Name)
		for k, v := range preset.Params() {
			known[k] = v
		}
	}

	if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
		p, err := core.LookupProfile(profile)
		if err != nil {
			return nil, err
		}
		known["profile"] = p.Key
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		known["config_file"] = path
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetInt64("seed")
		known["seed"] = seed
	}
	if dir := viper.GetString("transcript_dir"); dir != "" {
		known["transcript_dir"] = dir
	}
	if path := viper.GetString("metrics_file"); path != "" {
		known["metrics_file"] = path
	}
	if dir := viper.GetString("report_dir"); dir != "" {
		known["report_dir"] = dir
	}
	if cmd.Flags().Changed("log-level") || viper.InConfig("log_level") {
		known["log_level"] = viper.GetString("log_level")
	}

	return known, nil
}

// defaultProfile returns the declared default of the profile parameter
func defaultProfile(params []simulation.Parameter) string {
	for _, p := range params {
		if p.Name == "profile" {
			key, _ := p.Default.(string)
			return key
		}
	}
	return ""
}

// selectProfile asks which terrain profile to run, starting on def. It
// returns "" when prompts are disabled so the parameter default applies.
func selectProfile(def string) (string, error) {
	if utils.SkipPrompts() || !isTerminal(os.Stdin) {
		return "", nil
	}

	profiles := core.Profiles()
	options := make([]string, len(profiles))
	descriptions := make(map[string]string, len(profiles))
	for i, p := range profiles {
		options[i] = p.Name
		descriptions[p.Name] = p.Description
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select terrain profile:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}
	if p, err := core.LookupProfile(def); err == nil {
		prompt.Default = p.Name
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	p, err := core.LookupProfile(selected)
	if err != nil {
		return "", err
	}
	return p.Key, nil
}

func selectSimulation(cmd *cobra.Command) (string, error) {
	// Check if simulation is specified via flag
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		return simName, nil
	}

	names := simulation.DefaultRegistry.List()
	if len(names) == 0 {
		return "", fmt.Errorf("no simulations found")
	}
	if len(names) == 1 || utils.SkipPrompts() {
		return names[0], nil
	}

	// Descriptions come from simulation.yaml when available
	descriptions := make(map[string]string)
	if simInfos, err := utils.DiscoverSimulations(); err == nil {
		for _, info := range simInfos {
			descriptions[info.Config.Name] = info.Config.Description
		}
	}

	// Interactive selection
	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: names,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
