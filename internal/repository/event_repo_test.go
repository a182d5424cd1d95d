package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"machine_monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMockEventRepo(t *testing.T) (*EventSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("mock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewEventSQLite(db), mock
}

var eventColumns = []string{"id", "occurred_at", "type", "machine", "message", "meta"}

func TestEventAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()
	repo, mock := newMockEventRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "FAILURE", "I30", "I30 broke down. Problem: Overheating", `{"fault":"Overheating"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.FleetEvent{
		// EventID empty -> repo generates
		// OccurredAt zero -> repo sets UTC now
		Type:        "  failure ",
		Machine:     "I30",
		Description: "I30 broke down. Problem: Overheating",
		Metadata:    map[string]any{"fault": "Overheating"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestEventAppend_DBError(t *testing.T) {
	t.Parallel()
	repo, mock := newMockEventRepo(t)

	mock.ExpectExec("INSERT INTO fleet_events").
		WillReturnError(errors.New("down"))

	err := repo.Append(ctx(t), models.FleetEvent{Type: "repair", Description: "x"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestEventList_NoFilters_And_MetadataParsing(t *testing.T) {
	t.Parallel()
	repo, mock := newMockEventRepo(t)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"count": 3})

	rows := sqlmock.NewRows(eventColumns).
		AddRow("1", now, "PRODUCTION", "I30", "I30 produced a part. Total produced: 3", string(js)).
		AddRow("2", now.Add(time.Hour), "REPAIR", nil, "m2", nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + ` ORDER BY occurred_at ASC, rowid ASC`)).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), EventFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "1" || got[1].EventID != "2" {
		t.Fatalf("unexpected events: %+v", got)
	}
	if got[0].Machine != "I30" || got[1].Machine != "" {
		t.Fatalf("machine mapping: %q, %q", got[0].Machine, got[1].Machine)
	}
	b1, _ := json.Marshal(got[0].Metadata)
	if string(b1) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", string(b1), string(js))
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil meta, got %#v", got[1].Metadata)
	}
}

func TestEventList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()
	repo, mock := newMockEventRepo(t)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := selectEventsSQL + ` WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? AND machine = ? ORDER BY occurred_at ASC, rowid ASC`
	rows := sqlmock.NewRows(eventColumns).
		AddRow("2", from, "SCRAP", "H20", "b", nil).
		AddRow("3", to, "SCRAP", "H20", "c", nil)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from, to, "SCRAP", "H20").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), EventFilter{From: from, To: to, Type: " scrap ", Machine: "H20"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "2" || got[1].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestEventList_ScanError(t *testing.T) {
	t.Parallel()
	repo, mock := newMockEventRepo(t)

	rows := sqlmock.NewRows(eventColumns).
		// occurred_at of the wrong type forces a scan error
		AddRow("x", 123, "PRODUCTION", "I30", "msg", nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + ` ORDER BY occurred_at ASC, rowid ASC`)).
		WillReturnRows(rows)

	if _, err := repo.List(ctx(t), EventFilter{}); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
}
