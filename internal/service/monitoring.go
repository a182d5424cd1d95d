package service

import (
	"context"

	"machine_monitor/internal/models"
	"machine_monitor/internal/repository"
)

const (
	defaultTickHistory = 100
	maxTickHistory     = 1000
)

type MonitoringService struct {
	host  *FleetHost
	ticks repository.TickRepo
}

func NewMonitoringService(host *FleetHost, ticks repository.TickRepo) *MonitoringService {
	return &MonitoringService{host: host, ticks: ticks}
}

// GetFleet returns the live fleet snapshot.
func (s *MonitoringService) GetFleet(ctx context.Context) (models.FleetSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.FleetSnapshot{}, err
	}
	return s.host.Snapshot(), nil
}

// GetMachine returns one machine, or an error wrapping fleet.ErrUnknownMachine.
func (s *MonitoringService) GetMachine(ctx context.Context, machine string) (models.MachineState, error) {
	if err := ctx.Err(); err != nil {
		return models.MachineState{}, err
	}
	return s.host.Machine(machine)
}

// GetTickHistory returns the newest tick summaries of this run in tick order.
// limit <= 0 selects the default; larger values are capped.
func (s *MonitoringService) GetTickHistory(ctx context.Context, limit int) ([]models.TickSummary, error) {
	return s.ticks.List(ctx, s.host.RunID(), clampLimit(limit))
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultTickHistory
	case limit > maxTickHistory:
		return maxTickHistory
	default:
		return limit
	}
}
