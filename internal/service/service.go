package service

import (
	"context"
	"time"

	"machine_monitor/internal/logger"
	"machine_monitor/internal/models"
	"machine_monitor/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Fleet exposes operator commands against the running simulation.
type Fleet interface {
	Repair(ctx context.Context, machine string) (RepairResult, error)
}

// Monitoring exposes the read model: fleet snapshot, single machine, tick trend.
type Monitoring interface {
	GetFleet(ctx context.Context) (models.FleetSnapshot, error)
	GetMachine(ctx context.Context, machine string) (models.MachineState, error)
	GetTickHistory(ctx context.Context, limit int) ([]models.TickSummary, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.FleetEvent, error)
}

// Simulator drives the fleet clock. Stop Run via context cancellation.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
	Start(ctx context.Context, tick time.Duration) <-chan struct{}
	Step(ctx context.Context) models.FleetSnapshot
}

// Service aggregates all sub-services.
type Service struct {
	Fleet
	Monitoring
	EventLog
	Simulator
	Authorization
}

// NewService wires the repository layer and the fleet host into concrete services.
func NewService(repos *repository.Repository, host *FleetHost, auth AuthConfig, log *logger.Logger) *Service {
	return &Service{
		Fleet:         NewFleetService(host, log),
		Monitoring:    NewMonitoringService(host, repos.TickRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Simulator:     NewSimulatorService(host, repos.TickRepo, log),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
