package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"weatherbox/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestReadingInsert_Success(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewReadingSQLite(db)

	ts := time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC)
	pressure := 1013.2

	mock.ExpectExec(regexp.QuoteMeta(insertReadingSQL)).
		WithArgs(ts.Format(sqliteTimeFormat), 72.5, 22.5, 55.0, 1013.2).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Insert(ctx(t), models.Reading{
		Timestamp:    ts,
		TemperatureF: 72.5,
		TemperatureC: 22.5,
		Humidity:     55,
		PressureHPa:  &pressure,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestReadingInsert_NilPressureAndZeroTime(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewReadingSQLite(db)

	// Zero timestamp is stamped by the repo; pressure stays NULL.
	mock.ExpectExec(regexp.QuoteMeta(insertReadingSQL)).
		WithArgs(sqlmock.AnyArg(), 72.5, 22.5, 55.0, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Insert(ctx(t), models.Reading{
		TemperatureF: 72.5,
		TemperatureC: 22.5,
		Humidity:     55,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestReadingCurrent_EmptyTable(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewReadingSQLite(db)

	mock.ExpectQuery("SELECT ts, temperature_f").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Current(ctx(t))
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil for empty table, got %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestReadingCurrent_Success(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewReadingSQLite(db)

	ts := time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"ts", "temperature_f", "temperature_c", "humidity", "pressure_hpa"}).
		AddRow(ts, 72.5, 22.5, 55.0, 1013.2)

	mock.ExpectQuery("SELECT ts, temperature_f").
		WillReturnRows(rows)

	got, err := repo.Current(ctx(t))
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got == nil || got.TemperatureF != 72.5 {
		t.Fatalf("unexpected reading: %+v", got)
	}
	if p, ok := got.Pressure(); !ok || p != 1013.2 {
		t.Fatalf("pressure not scanned: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestReadingRange_NullPressureRows(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewReadingSQLite(db)

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"ts", "temperature_f", "temperature_c", "humidity", "pressure_hpa"}).
		AddRow(from, 60.0, 15.6, 70.0, nil).
		AddRow(from.Add(time.Hour), 62.0, 16.7, 68.0, 1015.0)

	mock.ExpectQuery("SELECT ts, temperature_f").
		WithArgs(from.Format(sqliteTimeFormat), to.Format(sqliteTimeFormat)).
		WillReturnRows(rows)

	got, err := repo.Range(ctx(t), from, to)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 readings, got %d", len(got))
	}
	if got[0].PressureHPa != nil {
		t.Fatalf("want nil pressure on first row, got %v", *got[0].PressureHPa)
	}
	if p, ok := got[1].Pressure(); !ok || p != 1015 {
		t.Fatalf("second row pressure: %+v", got[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestReadingPressureHistory_QueryError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := NewReadingSQLite(db)

	mock.ExpectQuery("SELECT ts, pressure_hpa").
		WillReturnError(errors.New("down"))

	_, err = repo.PressureHistory(ctx(t), 24*time.Hour)
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAggregateReadings(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	p1, p2 := 1010.0, 1014.0

	readings := []models.Reading{
		{Timestamp: base, TemperatureF: 60, TemperatureC: 15.6, Humidity: 50, PressureHPa: &p1},
		{Timestamp: base.Add(5 * time.Minute), TemperatureF: 64, TemperatureC: 17.8, Humidity: 54, PressureHPa: &p2},
		{Timestamp: base.Add(20 * time.Minute), TemperatureF: 70, TemperatureC: 21.1, Humidity: 40},
	}

	got := aggregateReadings(readings, 15*time.Minute)
	if len(got) != 2 {
		t.Fatalf("want 2 buckets, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(base) {
		t.Errorf("first bucket start: got %v", got[0].Timestamp)
	}
	if got[0].TemperatureF != 62 || got[0].Humidity != 52 {
		t.Errorf("first bucket means: %+v", got[0])
	}
	if p, ok := got[0].Pressure(); !ok || p != 1012 {
		t.Errorf("first bucket pressure mean: %+v", got[0].PressureHPa)
	}
	// Second bucket has no pressure samples at all.
	if got[1].PressureHPa != nil {
		t.Errorf("want nil pressure in second bucket, got %v", *got[1].PressureHPa)
	}
	if got[1].TemperatureF != 70 {
		t.Errorf("second bucket mean: %+v", got[1])
	}
}

func TestAggregateReadings_ZeroBucketPassthrough(t *testing.T) {
	t.Parallel()

	readings := []models.Reading{{TemperatureF: 60}}
	got := aggregateReadings(readings, 0)
	if len(got) != 1 || got[0].TemperatureF != 60 {
		t.Fatalf("want passthrough, got %+v", got)
	}
}
