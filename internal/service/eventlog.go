package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"machine_monitor/internal/models"
	"machine_monitor/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// ErrInvalidFilter marks a LogFilter the caller must fix.
var ErrInvalidFilter = errors.New("invalid log filter")

var knownEventTypes = map[string]struct{}{
	models.EventProduction:       {},
	models.EventFailure:          {},
	models.EventScrap:            {},
	models.EventMaintenanceAlert: {},
	models.EventRepair:           {},
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f LogFilter) (repository.EventFilter, error) {
	out := repository.EventFilter{
		From:    normalizeToUTC(f.From),
		To:      normalizeToUTC(f.To),
		Type:    normalizeEventType(f.Type),
		Machine: strings.TrimSpace(f.Machine),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return repository.EventFilter{}, fmt.Errorf("%w: From must be <= To", ErrInvalidFilter)
	}
	if out.Type != "" {
		if _, ok := knownEventTypes[out.Type]; !ok {
			return repository.EventFilter{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidFilter, out.Type)
		}
	}
	return out, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.FleetEvent, error) {
	filter, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, filter)
}
