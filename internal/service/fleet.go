package service

import (
	"context"

	"machine_monitor/internal/logger"
)

type FleetService struct {
	host *FleetHost
	log  *logger.Logger
}

func NewFleetService(host *FleetHost, log *logger.Logger) *FleetService {
	if log == nil {
		log = logger.Nop()
	}
	return &FleetService{host: host, log: log}
}

// Repair clears a broken machine's fault. Unknown machines return an error
// wrapping fleet.ErrUnknownMachine.
func (s *FleetService) Repair(ctx context.Context, machine string) (RepairResult, error) {
	if err := ctx.Err(); err != nil {
		return RepairResult{}, err
	}
	res, err := s.host.Repair(machine)
	if err != nil {
		return RepairResult{}, err
	}
	if !res.Repaired {
		s.log.Debugw("repair ignored, machine operational", "machine", machine)
	}
	return res, nil
}
