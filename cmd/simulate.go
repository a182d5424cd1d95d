package main

import (
	"fmt"
	"time"

	"machine_monitor/internal/config"
	"machine_monitor/internal/fleet"
	"machine_monitor/internal/logger"

	"github.com/spf13/cobra"
)

var (
	simTicks           int
	simSeed            int64
	simAutoRepairAfter int
	simFormat          string
	simLogLevel        string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a fixed number of ticks headless and print a report",
	Long: "simulate ticks the fleet synchronously without the API or database. " +
		"With --auto-repair-after K a machine broken for K ticks is repaired by the host.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(simFormat); err != nil {
			return err
		}
		if simTicks <= 0 {
			return fmt.Errorf("--ticks must be positive, got %d", simTicks)
		}
		if simAutoRepairAfter < 0 {
			return fmt.Errorf("--auto-repair-after must not be negative, got %d", simAutoRepairAfter)
		}

		cfg, err := config.Load(config.New(), configPath)
		if err != nil {
			return err
		}
		log, err := logger.NewTo(cmd.ErrOrStderr(), logger.Options{Level: simLogLevel})
		if err != nil {
			return err
		}
		defer func() { _ = log.Close() }()

		seed := simSeed
		if seed == 0 {
			seed = cfg.Simulation.Seed
		}
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		rep, err := runSimulation(cfg.Simulation.Fleet(), simOptions{
			Ticks:           simTicks,
			Seed:            seed,
			AutoRepairAfter: simAutoRepairAfter,
		}, log)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), rep, simFormat)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simTicks, "ticks", 100, "Number of ticks to run")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed (0 uses simulation.seed, then the clock)")
	simulateCmd.Flags().IntVar(&simAutoRepairAfter, "auto-repair-after", 0, "Repair machines broken for this many ticks (0 disables)")
	simulateCmd.Flags().StringVar(&simFormat, "format", formatText, "Report format: text, json or yaml")
	simulateCmd.Flags().StringVar(&simLogLevel, "log-level", logger.WarnLevel, "Log level for tick events (debug, info, warn, error)")
}

type simOptions struct {
	Ticks           int
	Seed            int64
	AutoRepairAfter int
}

// runSimulation is the headless host: it ticks, applies the auto-repair
// policy after every tick and summarizes the run.
func runSimulation(cfg fleet.Config, opts simOptions, log *logger.Logger) (simulationReport, error) {
	failures := map[string]int{}
	repairs := map[string]int{}
	obs := fleet.Hooks{
		OnMaintenanceAlert: func(machine, fault string) {
			failures[machine]++
			log.Warnw("maintenance alert", "machine", machine, "fault", fault)
		},
		OnRepaired: func(machine string) {
			repairs[machine]++
		},
		OnEvent: func(ev fleet.Event) {
			log.Debugw(ev.Message, "machine", ev.Machine, "kind", string(ev.Kind))
		},
	}

	f, err := newFleet(cfg, opts.Seed, obs)
	if err != nil {
		return simulationReport{}, err
	}

	brokenFor := make(map[string]int, len(cfg.Machines))
	for i := 0; i < opts.Ticks; i++ {
		f.Tick()
		if opts.AutoRepairAfter == 0 {
			continue
		}
		for _, name := range f.Names() {
			m, err := f.Machine(name)
			if err != nil {
				return simulationReport{}, err
			}
			if m.Operational {
				brokenFor[name] = 0
				continue
			}
			brokenFor[name]++
			if brokenFor[name] >= opts.AutoRepairAfter {
				if err := f.Repair(name); err != nil {
					return simulationReport{}, err
				}
				brokenFor[name] = 0
				log.Infow("auto repair", "machine", name, "tick", f.Ticks())
			}
		}
	}

	rep := buildReport(f.Snapshot(), opts.Seed, failures, repairs)
	log.Infow("simulation finished", "ticks", rep.Ticks, "good", rep.TotalGoodParts, "scrap", rep.TotalScrapParts)
	return rep, nil
}
