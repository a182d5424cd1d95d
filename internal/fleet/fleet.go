package fleet

import (
	"errors"
	"fmt"
	"time"

	"machine_monitor/internal/models"
)

// ErrUnknownMachine is returned when an id does not name a configured machine.
var ErrUnknownMachine = errors.New("unknown machine")

// history values appended per tick
const (
	statusBroken      = 0
	statusOperational = 1
)

type machine struct {
	name          string
	operational   bool
	fault         string
	good          int
	scrap         int
	statusHistory []int
	scrapHistory  []int
}

// record appends this tick's status and the current cumulative scrap count.
func (m *machine) record(status int) {
	m.statusHistory = append(m.statusHistory, status)
	m.scrapHistory = append(m.scrapHistory, m.scrap)
}

// Fleet simulates a fixed set of machines that produce parts while healthy,
// randomly fail, and stay broken until repaired.
//
// Fleet is not safe for concurrent use; the host must serialize Tick, Repair
// and the read accessors.
type Fleet struct {
	cfg        Config
	machines   []*machine
	index      map[string]*machine
	ticks      int
	totalGood  int
	totalScrap int

	rng      Rand
	observer Observer
	now      func() time.Time
}

// Option customizes a Fleet at construction.
type Option func(*Fleet)

// WithRand sets the random source. A nil source is ignored.
func WithRand(r Rand) Option {
	return func(f *Fleet) {
		if r != nil {
			f.rng = r
		}
	}
}

// WithObserver sets the receiver of alerts, repair confirmations and events.
func WithObserver(o Observer) Option {
	return func(f *Fleet) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithClock sets the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(f *Fleet) {
		if now != nil {
			f.now = now
		}
	}
}

// New builds a fleet with every machine operational, zero counters and empty
// histories.
func New(cfg Config, opts ...Option) (*Fleet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()

	f := &Fleet{
		cfg:      cfg,
		machines: make([]*machine, 0, len(cfg.Machines)),
		index:    make(map[string]*machine, len(cfg.Machines)),
		observer: NopObserver{},
		now:      time.Now,
	}
	for _, name := range cfg.Machines {
		m := &machine{name: name, operational: true}
		f.machines = append(f.machines, m)
		f.index[name] = m
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = newTimeSeededRand()
	}
	return f, nil
}

// Tick advances every machine by one step.
//
// A broken machine only records the tick. An operational machine fails with
// the configured probability, scrapping one part and raising a maintenance
// alert; otherwise it produces one good part.
func (f *Fleet) Tick() {
	for _, m := range f.machines {
		if !m.operational {
			m.record(statusBroken)
			continue
		}
		if f.rng.Float64() < f.cfg.FailureProbability {
			f.fail(m)
			continue
		}
		f.produce(m)
	}
	f.ticks++
}

func (f *Fleet) fail(m *machine) {
	m.operational = false
	m.fault = f.cfg.Faults[f.rng.Intn(len(f.cfg.Faults))]
	f.emit(LevelWarn, KindFailure, m, 0, fmt.Sprintf("%s broke down. Problem: %s", m.name, m.fault))

	name, fault := m.name, m.fault
	safely(func() { f.observer.MaintenanceAlert(name, fault) })

	m.scrap++
	f.totalScrap++
	m.record(statusBroken)
	f.emit(LevelWarn, KindScrap, m, m.scrap, fmt.Sprintf("Scrap part added by %s. Total scrap parts: %d", m.name, m.scrap))
}

func (f *Fleet) produce(m *machine) {
	m.good++
	f.totalGood++
	m.record(statusOperational)
	f.emit(LevelInfo, KindProduction, m, m.good, fmt.Sprintf("%s produced a part. Total produced: %d", m.name, m.good))
}

// Repair clears the fault of a broken machine. Repairing an operational
// machine is a no-op. Unknown ids return an error wrapping ErrUnknownMachine.
func (f *Fleet) Repair(id string) error {
	m, ok := f.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMachine, id)
	}
	if m.operational {
		return nil
	}
	m.operational = true
	m.fault = ""

	safely(func() { f.observer.Repaired(id) })
	f.emit(LevelInfo, KindRepair, m, 0, fmt.Sprintf("Machine %s was repaired.", m.name))
	return nil
}

func (f *Fleet) emit(level Level, kind Kind, m *machine, count int, msg string) {
	ev := Event{
		At:      f.now(),
		Level:   level,
		Kind:    kind,
		Machine: m.name,
		Message: msg,
		Count:   count,
	}
	safely(func() { f.observer.Event(ev) })
}

// Ticks returns the number of completed ticks.
func (f *Fleet) Ticks() int { return f.ticks }

// Totals returns the fleet-wide good and scrap part counters.
func (f *Fleet) Totals() (good, scrap int) { return f.totalGood, f.totalScrap }

// Names returns the machine names in configuration order.
func (f *Fleet) Names() []string {
	return append([]string(nil), f.cfg.Machines...)
}

// Faults returns the configured fault descriptions.
func (f *Fleet) Faults() []string {
	return append([]string(nil), f.cfg.Faults...)
}

// Machine returns a copy of one machine's state.
func (f *Fleet) Machine(id string) (models.MachineState, error) {
	m, ok := f.index[id]
	if !ok {
		return models.MachineState{}, fmt.Errorf("%w: %q", ErrUnknownMachine, id)
	}
	return m.state(), nil
}

// Snapshot returns a deep copy of the fleet, machines in configuration order.
func (f *Fleet) Snapshot() models.FleetSnapshot {
	out := models.FleetSnapshot{
		Tick:            f.ticks,
		TotalGoodParts:  f.totalGood,
		TotalScrapParts: f.totalScrap,
		Machines:        make([]models.MachineState, 0, len(f.machines)),
	}
	for _, m := range f.machines {
		out.Machines = append(out.Machines, m.state())
	}
	return out
}

func (m *machine) state() models.MachineState {
	return models.MachineState{
		Name:          m.name,
		Operational:   m.operational,
		Fault:         m.fault,
		GoodParts:     m.good,
		ScrapParts:    m.scrap,
		StatusHistory: append(make([]int, 0, len(m.statusHistory)), m.statusHistory...),
		ScrapHistory:  append(make([]int, 0, len(m.scrapHistory)), m.scrapHistory...),
	}
}
