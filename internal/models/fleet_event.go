package models

import "time"

// Event types stored in the event log.
const (
	EventProduction       = "PRODUCTION"
	EventFailure          = "FAILURE"
	EventScrap            = "SCRAP"
	EventMaintenanceAlert = "MAINTENANCE_ALERT"
	EventRepair           = "REPAIR"
)

// FleetEvent is a single log entry.
type FleetEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // PRODUCTION | FAILURE | SCRAP | MAINTENANCE_ALERT | REPAIR
	Machine     string    `json:"machine,omitempty"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
