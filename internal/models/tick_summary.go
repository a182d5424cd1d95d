package models

import "time"

// TickSummary records fleet-wide totals after one tick of a run.
type TickSummary struct {
	RunID           string    `json:"run_id"`
	Tick            int       `json:"tick"`
	TotalGoodParts  int       `json:"total_good_parts"`
	TotalScrapParts int       `json:"total_scrap_parts"`
	Operational     int       `json:"operational"`
	Broken          int       `json:"broken"`
	RecordedAt      time.Time `json:"recorded_at"`
}
