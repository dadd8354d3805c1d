package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/rover-simulations/cmd/rover/core"
	"github.com/picogrid/rover-simulations/pkg/logger"
	"github.com/picogrid/rover-simulations/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available simulations and terrain profiles",
	Long:  `List all available simulations with their descriptions, followed by the built-in terrain profiles`,
	RunE:  listSimulations,
}

func listSimulations(cmd *cobra.Command, args []string) error {
	// Discover available simulations
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	if len(simInfos) == 0 {
		fmt.Println("No simulations found")
	} else {
		// Create tabwriter for formatted output
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tDESCRIPTION")
		_, _ = fmt.Fprintln(w, "----\t-------\t--------\t-----------")

		for _, info := range simInfos {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				info.Config.Name,
				info.Config.Version,
				info.Config.Category,
				info.Config.Description,
			)
		}

		if err := w.Flush(); err != nil {
			return err
		}
	}

	logger.LogSubSection("Terrain profiles")
	table := logger.NewTable("KEY", "NAME", "HAZARDS", "DESCRIPTION")
	for _, p := range core.Profiles() {
		hazards := make([]string, 0, len(p.HazardTypes()))
		for _, h := range p.HazardTypes() {
			hazards = append(hazards, fmt.Sprintf("%s %d%%", h, p.Probability(h)))
		}
		table.AddRow(p.Key, p.Name, strings.Join(hazards, ", "), p.Description)
	}
	table.Print()

	return nil
}
