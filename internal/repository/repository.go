package repository

import (
	"context"
	"database/sql"
	"time"

	"machine_monitor/internal/models"
	"machine_monitor/internal/repository/db"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// EventFilter narrows EventRepo.List. Zero values disable a condition.
type EventFilter struct {
	From    time.Time
	To      time.Time
	Type    string
	Machine string
}

type EventRepo interface {
	Append(ctx context.Context, e models.FleetEvent) error
	List(ctx context.Context, f EventFilter) ([]models.FleetEvent, error)
}

type TickRepo interface {
	Append(ctx context.Context, s models.TickSummary) error
	// List returns the last limit summaries of a run in tick order; limit <= 0 means all.
	List(ctx context.Context, runID string, limit int) ([]models.TickSummary, error)
}

type Repository struct {
	EventRepo EventRepo
	TickRepo  TickRepo
	Auth      Authorization
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(conn),
		TickRepo:  NewTickSQLite(conn),
		Auth:      NewUserRepository(conn),
	}
}

// InitDB opens the SQLite file at path and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
