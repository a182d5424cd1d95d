package service

import (
	"context"
	"time"

	"machine_monitor/internal/logger"
	"machine_monitor/internal/models"
	"machine_monitor/internal/repository"
)

// SimulatorService advances the fleet on a fixed cadence and records the
// per-tick totals of the current run.
type SimulatorService struct {
	host  *FleetHost
	ticks repository.TickRepo
	log   *logger.Logger
	now   func() time.Time
}

func NewSimulatorService(host *FleetHost, ticks repository.TickRepo, log *logger.Logger) *SimulatorService {
	if log == nil {
		log = logger.Nop()
	}
	return &SimulatorService{host: host, ticks: ticks, log: log, now: time.Now}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	s.log.Infow("simulation started", "run_id", s.host.RunID(), "tick", tick)
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("simulation stopped", "run_id", s.host.RunID())
			return
		case <-t.C:
			s.Step(ctx)
		}
	}
}

// Start runs the simulation in its own goroutine. The returned channel is
// closed once Run has returned, including any tick that was in flight when
// ctx was canceled.
func (s *SimulatorService) Start(ctx context.Context, tick time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, tick)
	}()
	return done
}

// Step performs exactly one tick. Failing to store the summary is logged
// and does not affect the simulation.
func (s *SimulatorService) Step(ctx context.Context) models.FleetSnapshot {
	snap := s.host.Tick()
	if s.ticks == nil {
		return snap
	}
	if err := s.ticks.Append(ctx, summarize(s.host.RunID(), snap, s.now().UTC())); err != nil {
		s.log.Errorw("tick_summary_append_failed", "err", err, "tick", snap.Tick)
	}
	return snap
}

func summarize(runID string, snap models.FleetSnapshot, at time.Time) models.TickSummary {
	broken := len(snap.Broken())
	return models.TickSummary{
		RunID:           runID,
		Tick:            snap.Tick,
		TotalGoodParts:  snap.TotalGoodParts,
		TotalScrapParts: snap.TotalScrapParts,
		Operational:     len(snap.Machines) - broken,
		Broken:          broken,
		RecordedAt:      at,
	}
}
