package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"machine_monitor/internal/fleet"
	"machine_monitor/internal/models"
	"machine_monitor/internal/repository"
)

// ---- Test doubles ----

// eventRepoStub is a minimal stub for repository.EventRepo.
type eventRepoStub struct {
	mu        sync.Mutex
	appends   []models.FleetEvent
	appendErr error
	delay     time.Duration

	listFilter repository.EventFilter
	listCalled bool
	listResp   []models.FleetEvent
	listErr    error
}

func (e *eventRepoStub) Append(_ context.Context, ev models.FleetEvent) error {
	time.Sleep(e.delay)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.appendErr != nil {
		return e.appendErr
	}
	e.appends = append(e.appends, ev)
	return nil
}

func (e *eventRepoStub) List(_ context.Context, f repository.EventFilter) ([]models.FleetEvent, error) {
	e.listCalled = true
	e.listFilter = f
	return e.listResp, e.listErr
}

func (e *eventRepoStub) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.appends)
}

func (e *eventRepoStub) byType(typ string) []models.FleetEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []models.FleetEvent
	for _, ev := range e.appends {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// tickRepoStub is a minimal stub for repository.TickRepo.
type tickRepoStub struct {
	appends   []models.TickSummary
	appendErr error

	listRunID string
	listLimit int
	listResp  []models.TickSummary
}

func (s *tickRepoStub) Append(_ context.Context, t models.TickSummary) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appends = append(s.appends, t)
	return nil
}

func (s *tickRepoStub) List(_ context.Context, runID string, limit int) ([]models.TickSummary, error) {
	s.listRunID = runID
	s.listLimit = limit
	return s.listResp, nil
}

// constRand draws the same value every time.
type constRand float64

func (c constRand) Float64() float64 { return float64(c) }
func (c constRand) Intn(int) int     { return 0 }

var errDBDown = errors.New("db down")

// newHost builds a two-machine fleet that fails on every draw when fail is set
// and never fails otherwise.
func newHost(t *testing.T, fail bool, obs fleet.Observer) *FleetHost {
	t.Helper()
	r := constRand(0.99)
	if fail {
		r = constRand(0)
	}
	opts := []fleet.Option{fleet.WithRand(r)}
	if obs != nil {
		opts = append(opts, fleet.WithObserver(obs))
	}
	f, err := fleet.New(fleet.Config{
		Machines:           []string{"I30", "H20"},
		Faults:             []string{"Motor failure"},
		FailureProbability: 0.5,
	}, opts...)
	if err != nil {
		t.Fatalf("fleet.New: %v", err)
	}
	return NewFleetHost(f, 0)
}
