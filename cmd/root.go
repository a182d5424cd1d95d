package main

import (
	"fmt"
	"os"

	"machine_monitor/internal/fleet"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "machine-monitor",
	Short: "Production fleet failure simulator",
	Long: "machine-monitor simulates a fleet of production machines that randomly fail, " +
		"accrue scrap while broken and wait for an operator to repair them.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default configs/config.yml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

// newFleet builds a fleet; seed 0 selects a time-seeded source.
func newFleet(cfg fleet.Config, seed int64, obs fleet.Observer) (*fleet.Fleet, error) {
	opts := []fleet.Option{fleet.WithObserver(obs)}
	if seed != 0 {
		opts = append(opts, fleet.WithRand(fleet.NewSeededRand(seed)))
	}
	return fleet.New(cfg, opts...)
}
