package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"weatherbox/internal/models"
)

type PredictionSQLite struct {
	db *sql.DB
}

func NewPredictionSQLite(db *sql.DB) *PredictionSQLite { return &PredictionSQLite{db: db} }

var _ PredictionRepo = (*PredictionSQLite)(nil)

// Append stores one prediction pass for later correlation with tagged events.
func (r *PredictionSQLite) Append(ctx context.Context, p models.PredictionRecord) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	} else {
		p.CreatedAt = p.CreatedAt.UTC()
	}

	predictions, err := marshalPredictions(p.Predictions)
	if err != nil {
		return err
	}
	conditions, err := marshalConditions(p.Conditions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO weather_predictions (id, created_at, predictions, conditions)
		VALUES (?, ?, ?, ?)
	`,
		p.ID,
		p.CreatedAt.Format(sqliteTimeFormat),
		predictions,
		conditions,
	)
	return err
}

// ListRange returns stored prediction passes within [from, to], ascending.
func (r *PredictionSQLite) ListRange(ctx context.Context, from, to time.Time) ([]models.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, predictions, conditions FROM weather_predictions
		WHERE created_at >= ? AND created_at <= ?
		ORDER BY created_at ASC
	`, from.UTC().Format(sqliteTimeFormat), to.UTC().Format(sqliteTimeFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PredictionRecord, 0, 32)
	for rows.Next() {
		var rec models.PredictionRecord
		var predictions, conditions sql.NullString
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &predictions, &conditions); err != nil {
			return nil, err
		}
		rec.CreatedAt = rec.CreatedAt.UTC()

		if predictions.Valid && predictions.String != "" {
			_ = json.Unmarshal([]byte(predictions.String), &rec.Predictions)
		}
		if conditions.Valid && conditions.String != "" {
			var snapshot models.Reading
			if err := json.Unmarshal([]byte(conditions.String), &snapshot); err == nil {
				rec.Conditions = &snapshot
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
