package service

import (
	"time"

	"machine_monitor/internal/models"
)

// RepairResult reports the machine after a repair request.
type RepairResult struct {
	Repaired bool                // false when the machine was already operational
	Machine  models.MachineState // state after the request
}

// LogFilter supports history filtering by time range, type and machine.
type LogFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Type    string    // "", "PRODUCTION", "FAILURE", "SCRAP", "MAINTENANCE_ALERT", "REPAIR"
	Machine string    // "" means every machine
}
