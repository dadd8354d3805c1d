package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/picogrid/rover-simulations/cmd/rover/simulation"
	"github.com/picogrid/rover-simulations/pkg/logger"
)

var (
	configPath string
	profile    string
)

var rootCmd = &cobra.Command{
	Use:   "rover",
	Short: "Run one rover scenario without the simulation CLI",
	RunE: func(cmd *cobra.Command, _ []string) error {
		params := map[string]interface{}{"config_file": configPath}
		if profile != "" {
			params["profile"] = profile
		}

		sim := simulation.NewRoverSimulation()
		if err := sim.Configure(params); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
		return sim.Run(ctx)
	},
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&configPath, "config", "", "rover config file (YAML)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "", "terrain profile (rock, sink, free, ffa)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
