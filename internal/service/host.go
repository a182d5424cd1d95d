package service

import (
	"sync"

	"machine_monitor/internal/fleet"
	"machine_monitor/internal/models"

	"github.com/google/uuid"
)

// FleetHost owns the simulation and serializes every call into it. The fleet
// core itself is single-threaded; the ticker goroutine and HTTP handlers all
// go through here.
type FleetHost struct {
	mu     sync.Mutex
	fleet  *fleet.Fleet
	runID  string
	window int
}

// NewFleetHost wraps f and tags this process run with a fresh id. Snapshots
// handed out carry at most historyWindow ticks of per-machine history; 0
// keeps everything.
func NewFleetHost(f *fleet.Fleet, historyWindow int) *FleetHost {
	if historyWindow < 0 {
		historyWindow = 0
	}
	return &FleetHost{fleet: f, runID: uuid.NewString(), window: historyWindow}
}

// RunID identifies the current simulation run in persisted tick summaries.
func (h *FleetHost) RunID() string { return h.runID }

// Tick advances the fleet one step and returns the resulting snapshot.
func (h *FleetHost) Tick() models.FleetSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fleet.Tick()
	return h.trimSnapshot(h.fleet.Snapshot())
}

// Repair clears a machine's fault. Repaired is false when the machine was
// already operational.
func (h *FleetHost) Repair(machine string) (RepairResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	before, err := h.fleet.Machine(machine)
	if err != nil {
		return RepairResult{}, err
	}
	if err := h.fleet.Repair(machine); err != nil {
		return RepairResult{}, err
	}
	after, err := h.fleet.Machine(machine)
	if err != nil {
		return RepairResult{}, err
	}
	return RepairResult{Repaired: !before.Operational, Machine: h.trim(after)}, nil
}

// Snapshot returns a copy of the whole fleet.
func (h *FleetHost) Snapshot() models.FleetSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.trimSnapshot(h.fleet.Snapshot())
}

// Machine returns a copy of one machine.
func (h *FleetHost) Machine(machine string) (models.MachineState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, err := h.fleet.Machine(machine)
	if err != nil {
		return models.MachineState{}, err
	}
	return h.trim(m), nil
}

func (h *FleetHost) trimSnapshot(s models.FleetSnapshot) models.FleetSnapshot {
	for i := range s.Machines {
		s.Machines[i] = h.trim(s.Machines[i])
	}
	return s
}

// trim keeps the newest window entries. Inputs are already copies.
func (h *FleetHost) trim(m models.MachineState) models.MachineState {
	if h.window == 0 {
		return m
	}
	if n := len(m.StatusHistory); n > h.window {
		m.StatusHistory = m.StatusHistory[n-h.window:]
	}
	if n := len(m.ScrapHistory); n > h.window {
		m.ScrapHistory = m.ScrapHistory[n-h.window:]
	}
	return m
}
