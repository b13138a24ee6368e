package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"weatherbox/internal/models"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

// Append inserts a tagged event. If EventID or OccurredAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.WeatherEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	conditions, err := marshalConditions(e.Conditions)
	if err != nil {
		return err
	}
	predictions, err := marshalPredictions(e.Predictions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO weather_events (id, occurred_at, event_type, intensity, notes, conditions, predictions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.Format(sqliteTimeFormat),
		strings.ToLower(strings.TrimSpace(e.EventType)),
		e.Intensity,
		e.Notes,
		conditions,
		predictions,
	)
	return err
}

// ListRecent returns the newest events first, capped at limit.
func (r *EventSQLite) ListRecent(ctx context.Context, limit int) ([]models.WeatherEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.queryEvents(ctx, selectEventsSQL+` ORDER BY occurred_at DESC LIMIT ?`, limit)
}

// ListRange returns events within [from, to], ascending.
func (r *EventSQLite) ListRange(ctx context.Context, from, to time.Time) ([]models.WeatherEvent, error) {
	return r.queryEvents(ctx, selectEventsSQL+` WHERE occurred_at >= ? AND occurred_at <= ? ORDER BY occurred_at ASC`,
		from.UTC().Format(sqliteTimeFormat), to.UTC().Format(sqliteTimeFormat))
}

const selectEventsSQL = `SELECT id, occurred_at, event_type, intensity, notes, conditions, predictions FROM weather_events`

func (r *EventSQLite) queryEvents(ctx context.Context, query string, args ...any) ([]models.WeatherEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.WeatherEvent, 0, 16)
	for rows.Next() {
		var ev models.WeatherEvent
		var conditions, predictions sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.EventType, &ev.Intensity, &ev.Notes, &conditions, &predictions); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()

		if conditions.Valid && conditions.String != "" {
			var snapshot models.Reading
			if err := json.Unmarshal([]byte(conditions.String), &snapshot); err == nil {
				ev.Conditions = &snapshot
			}
		}
		if predictions.Valid && predictions.String != "" {
			// malformed rows keep a nil slice rather than failing the list
			_ = json.Unmarshal([]byte(predictions.String), &ev.Predictions)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func marshalConditions(r *models.Reading) (*string, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func marshalPredictions(predictions []string) (*string, error) {
	if len(predictions) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(predictions)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
