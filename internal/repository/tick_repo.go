package repository

import (
	"context"
	"database/sql"
	"time"

	"machine_monitor/internal/models"
)

type TickSQLite struct {
	db *sql.DB
}

func NewTickSQLite(db *sql.DB) *TickSQLite { return &TickSQLite{db: db} }

const (
	insertTickSQL = `
		INSERT INTO fleet_ticks (run_id, tick, total_good, total_scrap, operational, broken, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	// newest first, flipped to tick order after scanning
	selectTicksSQL = `
		SELECT run_id, tick, total_good, total_scrap, operational, broken, recorded_at
		FROM fleet_ticks WHERE run_id = ? ORDER BY tick DESC
	`
)

// Append stores one tick summary. RecordedAt defaults to now.
func (r *TickSQLite) Append(ctx context.Context, s models.TickSummary) error {
	ts := s.RecordedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}
	_, err := r.db.ExecContext(ctx, insertTickSQL,
		s.RunID,
		s.Tick,
		s.TotalGoodParts,
		s.TotalScrapParts,
		s.Operational,
		s.Broken,
		ts,
	)
	return err
}

// List returns up to limit most recent summaries of runID in ascending tick order.
func (r *TickSQLite) List(ctx context.Context, runID string, limit int) ([]models.TickSummary, error) {
	q := selectTicksSQL
	args := []any{runID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TickSummary
	for rows.Next() {
		var s models.TickSummary
		if err := rows.Scan(&s.RunID, &s.Tick, &s.TotalGoodParts, &s.TotalScrapParts, &s.Operational, &s.Broken, &s.RecordedAt); err != nil {
			return nil, err
		}
		s.RecordedAt = s.RecordedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
