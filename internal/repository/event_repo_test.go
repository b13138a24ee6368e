package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"weatherbox/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestEventAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	// We don't know the generated id or exact timestamp string, but we can
	// match the Exec and the normalized type.
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO weather_events (id, occurred_at, event_type, intensity, notes, conditions, predictions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(),
			"thunderstorm", "heavy", "rolled in fast",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	pressure := 1002.5
	err = repo.Append(ctx(t), models.WeatherEvent{
		// EventID empty -> repo generates
		// OccurredAt zero -> repo sets UTC now
		EventType: "  Thunderstorm ",
		Intensity: "heavy",
		Notes:     "rolled in fast",
		Conditions: &models.Reading{
			TemperatureF: 78,
			Humidity:     92,
			PressureHPa:  &pressure,
		},
		Predictions: []string{"storm incoming"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	mock.ExpectExec("INSERT INTO weather_events").
		WillReturnError(errors.New("down"))

	err = repo.Append(ctx(t), models.WeatherEvent{EventType: "fog"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventListRecent_SnapshotParsing(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	snapshot, _ := json.Marshal(models.Reading{Timestamp: now, TemperatureF: 45, Humidity: 95})
	predictions, _ := json.Marshal([]string{"fog possible"})

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "event_type", "intensity", "notes", "conditions", "predictions"}).
		AddRow("1", now, "fog", "light", "", string(snapshot), string(predictions)).
		AddRow("2", now.Add(-time.Hour), "rain", "", "", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL+` ORDER BY occurred_at DESC LIMIT ?`)).
		WithArgs(20).
		WillReturnRows(rows)

	got, err := repo.ListRecent(ctx(t), 0) // 0 falls back to the default limit
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if got[0].Conditions == nil || got[0].Conditions.TemperatureF != 45 {
		t.Fatalf("snapshot not parsed: %+v", got[0].Conditions)
	}
	if len(got[0].Predictions) != 1 || got[0].Predictions[0] != "fog possible" {
		t.Fatalf("predictions not parsed: %v", got[0].Predictions)
	}
	// nil columns stay nil
	if got[1].Conditions != nil || got[1].Predictions != nil {
		t.Fatalf("expected empty snapshot, got %+v", got[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventListRange_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 2, 11, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "event_type", "intensity", "notes", "conditions", "predictions"}).
		AddRow("2", from, "rain", "", "", nil, nil).
		AddRow("3", to, "rain", "", "", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL+` WHERE occurred_at >= ? AND occurred_at <= ? ORDER BY occurred_at ASC`)).
		WithArgs(from.Format(sqliteTimeFormat), to.Format(sqliteTimeFormat)).
		WillReturnRows(rows)

	got, err := repo.ListRange(ctx(t), from, to)
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "2" || got[1].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventList_ScanError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewEventSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "event_type", "intensity", "notes", "conditions", "predictions"}).
		// occurred_at wrong type to force scan error
		AddRow("x", 123, "fog", "", "", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL)).
		WillReturnRows(rows)

	_, err = repo.ListRecent(ctx(t), 5)
	if err == nil {
		t.Fatalf("expected scan error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
