package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
	"github.com/picogrid/rover-simulations/pkg/config"
	"github.com/picogrid/rover-simulations/pkg/logger"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage run presets",
	Long:  `Manage named parameter sets stored in $HOME/.rover-sim/presets.yaml`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE:  listPresets,
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the parameters a preset applies",
	Args:  cobra.ExactArgs(1),
	RunE:  showPreset,
}

var presetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new preset",
	RunE:  addPreset,
}

var presetRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a preset",
	RunE:  removePreset,
}

func init() {
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetAddCmd)
	presetCmd.AddCommand(presetRemoveCmd)
}

func listPresets(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	if len(cfg.Presets) == 0 {
		fmt.Println("No presets configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPROFILE\tFAILURE %\tTARGETS\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-------\t---------\t-------\t-----------")

	for _, p := range cfg.Presets {
		failure := "default"
		if p.FailureProbability != nil {
			failure = strconv.Itoa(*p.FailureProbability)
		}
		targets := "default"
		if p.TargetDistance > 0 || p.TargetResolved != nil {
			resolved := "default"
			if p.TargetResolved != nil {
				resolved = strconv.Itoa(*p.TargetResolved)
			}
			targets = fmt.Sprintf("distance %.1f, resolved %s", p.TargetDistance, resolved)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Profile, failure, targets, p.Description)
	}

	return w.Flush()
}

func showPreset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	p, ok := cfg.Find(args[0])
	if !ok {
		return fmt.Errorf("preset %s not found", args[0])
	}

	logger.LogSubSection(p.Name)
	if p.Description != "" {
		logger.LogKeyValue("Description", p.Description)
	}

	params := p.Params()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logger.LogKeyValue(k, params[k])
	}

	if len(p.HazardFailureProbability) > 0 {
		hazards := make([]string, 0, len(p.HazardFailureProbability))
		for h, pct := range p.HazardFailureProbability {
			hazards = append(hazards, fmt.Sprintf("%s %d%%", h, pct))
		}
		sort.Strings(hazards)
		logger.LogList("Hazard failure overrides:", hazards)
	}
	return nil
}

func addPreset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	var preset config.Preset

	// Prompt for name
	namePrompt := &survey.Input{
		Message: "Preset name:",
	}
	if err := survey.AskOne(namePrompt, &preset.Name, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if _, exists := cfg.Find(preset.Name); exists {
		return fmt.Errorf("preset %s already exists", preset.Name)
	}

	descPrompt := &survey.Input{
		Message: "Description (optional):",
	}
	if err := survey.AskOne(descPrompt, &preset.Description); err != nil {
		return err
	}

	// Prompt for profile
	profiles := core.Profiles()
	keys := make([]string, len(profiles))
	for i, p := range profiles {
		keys[i] = p.Key
	}
	profilePrompt := &survey.Select{
		Message: "Terrain profile:",
		Options: keys,
		Default: keys[0],
	}
	if err := survey.AskOne(profilePrompt, &preset.Profile); err != nil {
		return err
	}

	// Prompt for failure probability, blank keeps the configured default
	var failure string
	failurePrompt := &survey.Input{
		Message: "Failure probability per attempt (0-100, blank for default):",
	}
	if err := survey.AskOne(failurePrompt, &failure, survey.WithValidator(percentOrBlank)); err != nil {
		return err
	}
	if failure != "" {
		p, _ := strconv.Atoi(failure)
		preset.FailureProbability = &p
	}

	var distance float64
	distancePrompt := &survey.Input{
		Message: "Target distance (0 for default):",
		Default: "0",
	}
	if err := survey.AskOne(distancePrompt, &distance); err != nil {
		return err
	}
	preset.TargetDistance = distance

	if err := cfg.Add(preset); err != nil {
		return err
	}

	if err := config.SavePresets(cfg); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}

	fmt.Printf("Preset %s added successfully\n", preset.Name)
	return nil
}

func removePreset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	if len(cfg.Presets) == 0 {
		fmt.Println("No presets to remove")
		return nil
	}

	// Build list of preset names
	names := make([]string, len(cfg.Presets))
	for i, p := range cfg.Presets {
		names[i] = p.Name
	}

	// Prompt for selection
	var selected string
	prompt := &survey.Select{
		Message: "Select preset to remove:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return err
	}

	// Confirm removal
	var confirm bool
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("Are you sure you want to remove %s?", selected),
		Default: false,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return err
	}

	if !confirm {
		fmt.Println("Removal cancelled")
		return nil
	}

	cfg.Remove(selected)

	if err := config.SavePresets(cfg); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}

	fmt.Printf("Preset %s removed successfully\n", selected)
	return nil
}

// percentOrBlank accepts an empty answer or an integer in [0, 100]
func percentOrBlank(ans interface{}) error {
	s, _ := ans.(string)
	if s == "" {
		return nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > 100 {
		return fmt.Errorf("enter a whole number between 0 and 100")
	}
	return nil
}
