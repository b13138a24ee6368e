package repository

import (
	"context"
	"database/sql"
	"time"

	"weatherbox/internal/models"
	"weatherbox/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type ReadingRepo interface {
	Insert(ctx context.Context, r models.Reading) error
	Current(ctx context.Context) (*models.Reading, error)
	Recent(ctx context.Context, lookback time.Duration) ([]models.Reading, error)
	Range(ctx context.Context, from, to time.Time) ([]models.Reading, error)
	RangeAggregated(ctx context.Context, from, to time.Time, bucket time.Duration) ([]models.Reading, error)
	PressureHistory(ctx context.Context, lookback time.Duration) ([]models.PressurePoint, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.WeatherEvent) error
	ListRecent(ctx context.Context, limit int) ([]models.WeatherEvent, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.WeatherEvent, error)
}

type PredictionRepo interface {
	Append(ctx context.Context, p models.PredictionRecord) error
	ListRange(ctx context.Context, from, to time.Time) ([]models.PredictionRecord, error)
}

type Repository struct {
	Readings    ReadingRepo
	Events      EventRepo
	Predictions PredictionRepo
	Auth        Authorization
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		Readings:    NewReadingSQLite(database),
		Events:      NewEventSQLite(database),
		Predictions: NewPredictionSQLite(database),
		Auth:        NewUserRepository(database),
	}
}

// InitDB opens the SQLite database and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
