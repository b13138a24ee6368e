package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"weatherbox/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db}
}

var _ ReadingRepo = (*ReadingSQLite)(nil)

// SQLite TIMESTAMP format "YYYY-MM-DD HH:MM:SS"
const sqliteTimeFormat = "2006-01-02 15:04:05"

const (
	insertReadingSQL = `
		INSERT INTO readings (ts, temperature_f, temperature_c, humidity, pressure_hpa)
		VALUES (?, ?, ?, ?, ?)
	`

	selectReadingsSQL = `
		SELECT ts, temperature_f, temperature_c, humidity, pressure_hpa
		FROM readings
	`
)

// Insert stores one validated sample. A zero timestamp is stamped now.
func (r *ReadingSQLite) Insert(ctx context.Context, reading models.Reading) error {
	ts := reading.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	var pressure any
	if p, ok := reading.Pressure(); ok {
		pressure = p
	}

	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		ts.Format(sqliteTimeFormat),
		reading.TemperatureF,
		reading.TemperatureC,
		reading.Humidity,
		pressure,
	)
	return err
}

// Current returns the newest reading, or nil when the table is empty.
func (r *ReadingSQLite) Current(ctx context.Context) (*models.Reading, error) {
	row := r.db.QueryRowContext(ctx, selectReadingsSQL+` ORDER BY ts DESC LIMIT 1`)

	reading, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

// Recent returns readings from the trailing lookback window, ascending.
func (r *ReadingSQLite) Recent(ctx context.Context, lookback time.Duration) ([]models.Reading, error) {
	cutoff := time.Now().UTC().Add(-lookback)
	return r.queryReadings(ctx, selectReadingsSQL+` WHERE ts >= ? ORDER BY ts ASC`,
		cutoff.Format(sqliteTimeFormat))
}

// Range returns readings within [from, to], ascending.
func (r *ReadingSQLite) Range(ctx context.Context, from, to time.Time) ([]models.Reading, error) {
	return r.queryReadings(ctx, selectReadingsSQL+` WHERE ts >= ? AND ts <= ? ORDER BY ts ASC`,
		from.UTC().Format(sqliteTimeFormat), to.UTC().Format(sqliteTimeFormat))
}

// RangeAggregated returns the range downsampled to per-bucket means so the
// week and analysis views stay small. Buckets without samples are omitted;
// a bucket's pressure is nil unless at least one sample carried pressure.
func (r *ReadingSQLite) RangeAggregated(ctx context.Context, from, to time.Time, bucket time.Duration) ([]models.Reading, error) {
	raw, err := r.Range(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return aggregateReadings(raw, bucket), nil
}

// PressureHistory returns pressure-bearing samples from the trailing window.
func (r *ReadingSQLite) PressureHistory(ctx context.Context, lookback time.Duration) ([]models.PressurePoint, error) {
	cutoff := time.Now().UTC().Add(-lookback)
	rows, err := r.db.QueryContext(ctx, `
		SELECT ts, pressure_hpa FROM readings
		WHERE ts >= ? AND pressure_hpa IS NOT NULL
		ORDER BY ts ASC
	`, cutoff.Format(sqliteTimeFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PressurePoint, 0, 64)
	for rows.Next() {
		var p models.PressurePoint
		if err := rows.Scan(&p.Timestamp, &p.PressureHPa); err != nil {
			return nil, err
		}
		p.Timestamp = p.Timestamp.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ReadingSQLite) queryReadings(ctx context.Context, query string, args ...any) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (models.Reading, error) {
	var r models.Reading
	var pressure sql.NullFloat64
	if err := row.Scan(&r.Timestamp, &r.TemperatureF, &r.TemperatureC, &r.Humidity, &pressure); err != nil {
		return models.Reading{}, err
	}
	r.Timestamp = r.Timestamp.UTC()
	if pressure.Valid {
		v := pressure.Float64
		r.PressureHPa = &v
	}
	return r, nil
}

// aggregateReadings collapses readings into per-bucket means, timestamped at
// the bucket start. Input must be ascending; output stays ascending.
func aggregateReadings(readings []models.Reading, bucket time.Duration) []models.Reading {
	if bucket <= 0 || len(readings) == 0 {
		return readings
	}

	type acc struct {
		tempF, tempC, humidity float64
		pressure               float64
		n, pressureN           int
	}

	var out []models.Reading
	var cur *acc
	var curStart time.Time

	flush := func() {
		if cur == nil {
			return
		}
		n := float64(cur.n)
		r := models.Reading{
			Timestamp:    curStart,
			TemperatureF: cur.tempF / n,
			TemperatureC: cur.tempC / n,
			Humidity:     cur.humidity / n,
		}
		if cur.pressureN > 0 {
			p := cur.pressure / float64(cur.pressureN)
			r.PressureHPa = &p
		}
		out = append(out, r)
		cur = nil
	}

	for _, r := range readings {
		start := r.Timestamp.Truncate(bucket)
		if cur == nil || !start.Equal(curStart) {
			flush()
			cur = &acc{}
			curStart = start
		}
		cur.tempF += r.TemperatureF
		cur.tempC += r.TemperatureC
		cur.humidity += r.Humidity
		cur.n++
		if p, ok := r.Pressure(); ok {
			cur.pressure += p
			cur.pressureN++
		}
	}
	flush()
	return out
}
