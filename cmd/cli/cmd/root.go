package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/picogrid/rover-simulations/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rover-sim",
	Short: "Rover simulation CLI",
	Long: `Rover Simulation CLI runs hazard traversal scenarios in which a
multi-wheeled rover vectors across terrain while dedicated handlers
free wheels that sink, freewheel or get blocked.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "cli-config", "", "CLI settings file (default is $HOME/.rover-sim/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(presetCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory
		viper.AddConfigPath("$HOME/.rover-sim")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ROVER")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in
	_ = viper.ReadInConfig()

	// Configure logger from flags, settings file or ROVER_LOG_LEVEL
	logger.SetLevel(logger.ParseLevel(viper.GetString("log_level")))
	plain := noColor || !isTerminal(os.Stdout)
	logger.SetNoColor(plain)
	if plain {
		color.NoColor = true
	}
}

// isTerminal reports whether f is attached to a TTY
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
