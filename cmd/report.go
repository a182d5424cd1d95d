package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"machine_monitor/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type machineReport struct {
	Name         string  `json:"name" yaml:"name"`
	Operational  bool    `json:"operational" yaml:"operational"`
	Fault        string  `json:"fault,omitempty" yaml:"fault,omitempty"`
	GoodParts    int     `json:"good_parts" yaml:"good_parts"`
	ScrapParts   int     `json:"scrap_parts" yaml:"scrap_parts"`
	Failures     int     `json:"failures" yaml:"failures"`
	Repairs      int     `json:"repairs" yaml:"repairs"`
	Availability float64 `json:"availability" yaml:"availability"` // share of ticks spent operational
}

type simulationReport struct {
	Ticks           int             `json:"ticks" yaml:"ticks"`
	Seed            int64           `json:"seed" yaml:"seed"`
	TotalGoodParts  int             `json:"total_good_parts" yaml:"total_good_parts"`
	TotalScrapParts int             `json:"total_scrap_parts" yaml:"total_scrap_parts"`
	Broken          []string        `json:"broken" yaml:"broken"`
	Machines        []machineReport `json:"machines" yaml:"machines"`
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func buildReport(snap models.FleetSnapshot, seed int64, failures, repairs map[string]int) simulationReport {
	rep := simulationReport{
		Ticks:           snap.Tick,
		Seed:            seed,
		TotalGoodParts:  snap.TotalGoodParts,
		TotalScrapParts: snap.TotalScrapParts,
		Broken:          snap.Broken(),
		Machines:        make([]machineReport, 0, len(snap.Machines)),
	}
	if rep.Broken == nil {
		rep.Broken = []string{}
	}
	for _, m := range snap.Machines {
		rep.Machines = append(rep.Machines, machineReport{
			Name:         m.Name,
			Operational:  m.Operational,
			Fault:        m.Fault,
			GoodParts:    m.GoodParts,
			ScrapParts:   m.ScrapParts,
			Failures:     failures[m.Name],
			Repairs:      repairs[m.Name],
			Availability: availability(m.StatusHistory),
		})
	}
	return rep
}

func availability(history []int) float64 {
	if len(history) == 0 {
		return 0
	}
	up := 0
	for _, s := range history {
		up += s
	}
	return float64(up) / float64(len(history))
}

func writeReport(w io.Writer, rep simulationReport, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		return writeText(w, rep)
	default:
		return validateFormat(format)
	}
}

func writeText(w io.Writer, rep simulationReport) error {
	fmt.Fprintf(w, "Simulation finished after %d ticks (seed %d)\n", rep.Ticks, rep.Seed)
	fmt.Fprintf(w, "Good parts: %d\nScrap parts: %d\n\n", rep.TotalGoodParts, rep.TotalScrapParts)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MACHINE\tSTATUS\tGOOD\tSCRAP\tFAILURES\tREPAIRS\tAVAILABILITY")
	for _, m := range rep.Machines {
		status := "operational"
		if !m.Operational {
			status = "broken: " + m.Fault
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
			m.Name, status, m.GoodParts, m.ScrapParts, m.Failures, m.Repairs, m.Availability*100)
	}
	return tw.Flush()
}
