package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"machine_monitor/internal/fleet"
	"machine_monitor/internal/logger"
	"machine_monitor/internal/models"
	"machine_monitor/internal/repository"

	"github.com/google/uuid"
)

const (
	recordTimeout = 2 * time.Second
	recordBuffer  = 1024
)

// RecorderOption configures an EventRecorder.
type RecorderOption func(*EventRecorder)

// WithRecorderBuffer sets how many events may wait for the writer before new
// ones are dropped.
func WithRecorderBuffer(n int) RecorderOption {
	return func(r *EventRecorder) {
		if n > 0 {
			r.buffer = n
		}
	}
}

// WithRecorderClock sets the clock used for alerts that arrive without a
// preceding failure event.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *EventRecorder) {
		if now != nil {
			r.now = now
		}
	}
}

// EventRecorder is the fleet.Observer of a served simulation: every callback
// is logged and queued for the event log. Callbacks never wait on storage; a
// writer goroutine started with Start drains the queue, and events that do
// not fit are dropped with a warning.
type EventRecorder struct {
	events repository.EventRepo
	log    *logger.Logger
	now    func() time.Time
	buffer int

	queue     chan models.FleetEvent
	startOnce sync.Once
	done      chan struct{}

	mu          sync.Mutex
	closed      bool
	lastFailure map[string]time.Time
}

var _ fleet.Observer = (*EventRecorder)(nil)

func NewEventRecorder(events repository.EventRepo, log *logger.Logger, opts ...RecorderOption) *EventRecorder {
	if log == nil {
		log = logger.Nop()
	}
	r := &EventRecorder{
		events:      events,
		log:         log,
		now:         time.Now,
		buffer:      recordBuffer,
		done:        make(chan struct{}),
		lastFailure: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.queue = make(chan models.FleetEvent, r.buffer)
	return r
}

// Start launches the writer. Calling it more than once is a no-op.
func (r *EventRecorder) Start() {
	r.startOnce.Do(func() {
		go r.write()
	})
}

// Close stops accepting events and waits until the writer has stored what is
// already queued, or until ctx is done.
func (r *EventRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	r.Start()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MaintenanceAlert records that a machine needs a technician. The alert
// carries the timestamp of the failure that raised it.
func (r *EventRecorder) MaintenanceAlert(machine, fault string) {
	r.log.Warnw("maintenance alert", "machine", machine, "fault", fault)

	r.mu.Lock()
	at, ok := r.lastFailure[machine]
	delete(r.lastFailure, machine)
	r.mu.Unlock()
	if !ok {
		at = r.now()
	}

	r.enqueue(models.FleetEvent{
		OccurredAt:  at,
		Type:        models.EventMaintenanceAlert,
		Machine:     machine,
		Description: fmt.Sprintf("Maintenance alert: %s - %s", machine, fault),
		Metadata:    map[string]any{"fault": fault},
	})
}

// Repaired confirms a repair. The REPAIR event itself arrives through Event.
func (r *EventRecorder) Repaired(machine string) {
	r.log.Infow("repair confirmed", "machine", machine)
}

// Event logs and stores one state change.
func (r *EventRecorder) Event(ev fleet.Event) {
	kv := []any{"machine", ev.Machine, "kind", string(ev.Kind)}
	if ev.Level == fleet.LevelWarn {
		r.log.Warnw(ev.Message, kv...)
	} else {
		r.log.Infow(ev.Message, kv...)
	}

	if ev.Kind == fleet.KindFailure {
		r.mu.Lock()
		r.lastFailure[ev.Machine] = ev.At
		r.mu.Unlock()
	}

	var meta any
	if ev.Count > 0 {
		meta = map[string]any{"count": ev.Count}
	}
	r.enqueue(models.FleetEvent{
		OccurredAt:  ev.At,
		Type:        string(ev.Kind),
		Machine:     ev.Machine,
		Description: ev.Message,
		Metadata:    meta,
	})
}

func (r *EventRecorder) enqueue(e models.FleetEvent) {
	if r.events == nil {
		return
	}
	e.EventID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warnw("event_dropped", "reason", "recorder closed", "type", e.Type, "machine", e.Machine)
		return
	}
	select {
	case r.queue <- e:
	default:
		r.log.Warnw("event_dropped", "reason", "buffer full", "type", e.Type, "machine", e.Machine)
	}
}

func (r *EventRecorder) write() {
	defer close(r.done)
	for e := range r.queue {
		r.store(e)
	}
}

func (r *EventRecorder) store(e models.FleetEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.events.Append(ctx, e); err != nil {
		r.log.Errorw("event_append_failed", "err", err, "type", e.Type, "machine", e.Machine)
	}
}
