package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"machine_monitor/internal/fleet"
	"machine_monitor/internal/logger"
	"machine_monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func alwaysFailing() fleet.Config {
	return fleet.Config{
		Machines:           []string{"I30", "H20"},
		Faults:             []string{"Overheating"},
		FailureProbability: 1,
	}
}

func TestRunSimulation_Reproducible(t *testing.T) {
	opts := simOptions{Ticks: 200, Seed: 42, AutoRepairAfter: 2}
	a, err := runSimulation(fleet.DefaultConfig(), opts, logger.Nop())
	require.NoError(t, err)
	b, err := runSimulation(fleet.DefaultConfig(), opts, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunSimulation_Accounting(t *testing.T) {
	rep, err := runSimulation(fleet.DefaultConfig(), simOptions{Ticks: 300, Seed: 7, AutoRepairAfter: 3}, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, 300, rep.Ticks)
	good, scrap := 0, 0
	for _, m := range rep.Machines {
		good += m.GoodParts
		scrap += m.ScrapParts
		assert.Equal(t, m.Failures, m.ScrapParts, "every failure scraps one part on %s", m.Name)
		assert.LessOrEqual(t, m.Repairs, m.Failures, m.Name)
		assert.InDelta(t, float64(m.GoodParts)/300, m.Availability, 1e-9, m.Name)
	}
	assert.Equal(t, rep.TotalGoodParts, good)
	assert.Equal(t, rep.TotalScrapParts, scrap)
}

func TestRunSimulation_NoAutoRepairLeavesMachinesBroken(t *testing.T) {
	rep, err := runSimulation(alwaysFailing(), simOptions{Ticks: 5, Seed: 1}, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"I30", "H20"}, rep.Broken)
	for _, m := range rep.Machines {
		assert.Equal(t, 1, m.Failures)
		assert.Equal(t, 1, m.ScrapParts)
		assert.Zero(t, m.Repairs)
		assert.Equal(t, "Overheating", m.Fault)
	}
}

func TestRunSimulation_AutoRepairAfter(t *testing.T) {
	// p = 1: break on ticks 1 and 4, repaired after ticks 3 and 6.
	rep, err := runSimulation(alwaysFailing(), simOptions{Ticks: 6, Seed: 1, AutoRepairAfter: 3}, logger.Nop())
	require.NoError(t, err)

	assert.Empty(t, rep.Broken)
	assert.Zero(t, rep.TotalGoodParts)
	assert.Equal(t, 4, rep.TotalScrapParts)
	for _, m := range rep.Machines {
		assert.Equal(t, 2, m.Failures, m.Name)
		assert.Equal(t, 2, m.Repairs, m.Name)
		assert.True(t, m.Operational, m.Name)
		assert.Zero(t, m.Availability, m.Name)
	}
}

func TestRunSimulation_InvalidConfig(t *testing.T) {
	_, err := runSimulation(fleet.Config{}, simOptions{Ticks: 1, Seed: 1}, logger.Nop())
	assert.ErrorIs(t, err, fleet.ErrInvalidConfig)
}

func sampleReport() simulationReport {
	return buildReport(models.FleetSnapshot{
		Tick:            4,
		TotalGoodParts:  5,
		TotalScrapParts: 1,
		Machines: []models.MachineState{
			{Name: "I30", Operational: true, GoodParts: 4, StatusHistory: []int{1, 1, 1, 1}},
			{Name: "H20", Fault: "Motor failure", GoodParts: 1, ScrapParts: 1, StatusHistory: []int{1, 0, 0, 0}},
		},
	}, 99, map[string]int{"H20": 1}, nil)
}

func TestBuildReport(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, []string{"H20"}, rep.Broken)
	assert.Equal(t, 1.0, rep.Machines[0].Availability)
	assert.Equal(t, 0.25, rep.Machines[1].Availability)
	assert.Equal(t, 1, rep.Machines[1].Failures)

	empty := buildReport(models.FleetSnapshot{}, 1, nil, nil)
	assert.NotNil(t, empty.Broken, "broken renders as [] rather than null")
}

func TestWriteReport_Formats(t *testing.T) {
	rep := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep, formatJSON))
	var fromJSON simulationReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, rep, fromJSON)

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, formatYAML))
	assert.Contains(t, buf.String(), "total_good_parts: 5")
	var fromYAML simulationReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, rep, fromYAML)

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, formatText))
	out := buf.String()
	assert.Contains(t, out, "Simulation finished after 4 ticks (seed 99)")
	assert.Contains(t, out, "broken: Motor failure")
	assert.Contains(t, out, "25.0%")

	assert.Error(t, writeReport(io.Discard, rep, "xml"))
}

func TestSimulateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"simulate", "--ticks", "25", "--seed", "3", "--format", "json"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	var rep simulationReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, 25, rep.Ticks)
	assert.Equal(t, int64(3), rep.Seed)
	assert.Len(t, rep.Machines, len(fleet.DefaultConfig().Machines))
}

func TestSimulateCommand_RejectsBadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"simulate", "--format", "xml"},
		{"simulate", "--ticks", "0"},
		{"simulate", "--auto-repair-after", "-1"},
	} {
		simFormat, simTicks, simAutoRepairAfter = formatText, 100, 0
		rootCmd.SetOut(io.Discard)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		assert.Error(t, err, strings.Join(args, " "))
	}
	simFormat, simTicks, simAutoRepairAfter = formatText, 100, 0
	rootCmd.SetArgs(nil)
}
