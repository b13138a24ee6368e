package service

import (
	"context"
	"errors"
	"time"

	"weatherbox/internal/forecast"
	"weatherbox/internal/models"
	"weatherbox/internal/repository"
)

const (
	defaultHistoryHours = 24
	maxHistoryHours     = 168 // one week

	weekBucket     = 15 * time.Minute
	analysisBucket = 30 * time.Minute
)

var errInvalidTimeRange = errors.New("invalid time range: start must be <= end")

type HistoryService struct {
	readings    repository.ReadingRepo
	predictions repository.PredictionRepo
	events      repository.EventRepo
}

func NewHistoryService(readings repository.ReadingRepo, predictions repository.PredictionRepo, events repository.EventRepo) *HistoryService {
	return &HistoryService{readings: readings, predictions: predictions, events: events}
}

// clampHours bounds a user-supplied lookback to [1, 168] hours, with a
// 24-hour default for zero or negative values.
func clampHours(hours int) int {
	if hours <= 0 {
		return defaultHistoryHours
	}
	if hours > maxHistoryHours {
		return maxHistoryHours
	}
	return hours
}

// History returns raw readings for the trailing window.
func (s *HistoryService) History(ctx context.Context, hours int) ([]models.Reading, error) {
	return s.readings.Recent(ctx, time.Duration(clampHours(hours))*time.Hour)
}

// PressureHistory returns pressure-bearing samples for the trailing window.
func (s *HistoryService) PressureHistory(ctx context.Context, hours int) ([]models.PressurePoint, error) {
	return s.readings.PressureHistory(ctx, time.Duration(clampHours(hours))*time.Hour)
}

// WeekHistory returns seven days of readings downsampled to 15-minute
// bucket means so the week chart stays light.
func (s *HistoryService) WeekHistory(ctx context.Context) ([]models.Reading, error) {
	now := time.Now().UTC()
	return s.readings.RangeAggregated(ctx, now.Add(-7*24*time.Hour), now, weekBucket)
}

// Analysis bundles downsampled readings, stored predictions, tagged events
// and a period summary for [from, to].
func (s *HistoryService) Analysis(ctx context.Context, from, to time.Time) (*models.Analysis, error) {
	from, to = from.UTC(), to.UTC()
	if from.After(to) {
		return nil, errInvalidTimeRange
	}

	readings, err := s.readings.RangeAggregated(ctx, from, to, analysisBucket)
	if err != nil {
		return nil, err
	}
	predictions, err := s.predictions.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &models.Analysis{
		StartDate:   from,
		EndDate:     to,
		WeatherData: readings,
		Predictions: predictions,
		Events:      events,
		Summary:     forecast.SummarizePeriod(readings, len(predictions), len(events)),
	}, nil
}

// Predictions returns the stored prediction trail for [from, to].
func (s *HistoryService) Predictions(ctx context.Context, from, to time.Time) ([]models.PredictionRecord, error) {
	from, to = from.UTC(), to.UTC()
	if from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.predictions.ListRange(ctx, from, to)
}
