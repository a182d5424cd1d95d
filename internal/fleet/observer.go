package fleet

import "time"

// Level is the severity of an Event.
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Kind classifies an Event.
type Kind string

const (
	KindProduction Kind = "PRODUCTION"
	KindFailure    Kind = "FAILURE"
	KindScrap      Kind = "SCRAP"
	KindRepair     Kind = "REPAIR"
)

// Event is a structured log record for a single state change.
type Event struct {
	At      time.Time
	Level   Level
	Kind    Kind
	Machine string
	Message string
	Count   int // good or scrap parts after the change; 0 for failures and repairs
}

// Observer receives side effects synchronously from Tick and Repair.
// Implementations must not call back into the Fleet.
type Observer interface {
	MaintenanceAlert(machine, fault string)
	Repaired(machine string)
	Event(ev Event)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) MaintenanceAlert(string, string) {}
func (NopObserver) Repaired(string)                 {}
func (NopObserver) Event(Event)                     {}

// Hooks adapts plain functions to Observer. Nil fields are skipped.
type Hooks struct {
	OnMaintenanceAlert func(machine, fault string)
	OnRepaired         func(machine string)
	OnEvent            func(ev Event)
}

func (h Hooks) MaintenanceAlert(machine, fault string) {
	if h.OnMaintenanceAlert != nil {
		h.OnMaintenanceAlert(machine, fault)
	}
}

func (h Hooks) Repaired(machine string) {
	if h.OnRepaired != nil {
		h.OnRepaired(machine)
	}
}

func (h Hooks) Event(ev Event) {
	if h.OnEvent != nil {
		h.OnEvent(ev)
	}
}

// MultiObserver fans out to every observer in order. A panicking observer
// does not prevent the others from running.
type MultiObserver []Observer

func (m MultiObserver) MaintenanceAlert(machine, fault string) {
	for _, o := range m {
		safely(func() { o.MaintenanceAlert(machine, fault) })
	}
}

func (m MultiObserver) Repaired(machine string) {
	for _, o := range m {
		safely(func() { o.Repaired(machine) })
	}
}

func (m MultiObserver) Event(ev Event) {
	for _, o := range m {
		safely(func() { o.Event(ev) })
	}
}

// safely runs fn and drops any panic it raises.
func safely(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
