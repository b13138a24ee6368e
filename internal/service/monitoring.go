package service

import (
	"context"
	"time"

	"weatherbox/internal/forecast"
	"weatherbox/internal/models"
	"weatherbox/internal/repository"
)

// Trend lookbacks. Pressure uses a longer window because meaningful
// barometric movement is slower than temperature or humidity swings.
const (
	tempTrendLookback     = 2 * time.Hour
	humidityTrendLookback = 2 * time.Hour
	pressureTrendLookback = 3 * time.Hour
)

type MonitoringService struct {
	readings    repository.ReadingRepo
	predictions repository.PredictionRepo
	comparer    Comparer
	broadcaster Broadcaster
}

func NewMonitoringService(readings repository.ReadingRepo, predictions repository.PredictionRepo, comparer Comparer, broadcaster Broadcaster) *MonitoringService {
	return &MonitoringService{
		readings:    readings,
		predictions: predictions,
		comparer:    comparer,
		broadcaster: broadcaster,
	}
}

// windowProvider adapts the reading store to the prediction engine's
// on-demand lookback pulls. Store errors read as an empty window.
func (s *MonitoringService) windowProvider(ctx context.Context) forecast.WindowProvider {
	return func(lookback time.Duration) []models.Reading {
		window, err := s.readings.Recent(ctx, lookback)
		if err != nil {
			return nil
		}
		return window
	}
}

// CurrentReading assembles the enriched current-conditions payload: the
// newest reading plus trends, derived quantities, predictions, today's
// summary and the official comparison. With no readings yet the payload
// still carries the engine's informational message.
func (s *MonitoringService) CurrentReading(ctx context.Context) (*CurrentConditions, error) {
	current, err := s.readings.Current(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	windows := s.windowProvider(ctx)

	out := &CurrentConditions{
		Reading:     current,
		Predictions: forecast.Predict(current, windows, now),
	}
	if current == nil {
		return out, nil
	}

	out.TemperatureTrend = forecast.TemperatureTrend(windows(tempTrendLookback), tempTrendLookback)
	out.HumidityTrend = forecast.HumidityTrend(windows(humidityTrendLookback), humidityTrendLookback)
	out.PressureTrend = forecast.PressureTrend(windows(pressureTrendLookback), pressureTrendLookback)

	if dew := forecast.DewPointF(current.TemperatureF, current.Humidity); dew != forecast.DewPointSentinelF {
		out.DewPointF = &dew
	}
	feels := forecast.FeelsLike(current.TemperatureF, current.Humidity, 0)
	out.FeelsLikeF = &feels
	out.Comfort = forecast.ComfortDescriptions(feels, current.Humidity)

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if today, err := s.readings.Range(ctx, startOfDay, now); err == nil {
		out.TodaySummary = forecast.Summarize(today)
	}

	if s.comparer != nil {
		comparison := s.comparer.Compare(ctx, *current)
		out.APIComparison = &comparison
	}

	// Keep the prediction trail for later event correlation; losing one
	// pass is not worth failing the request.
	if len(out.Predictions.Messages) > 0 {
		_ = s.predictions.Append(ctx, models.PredictionRecord{
			CreatedAt:   now,
			Predictions: out.Predictions.Messages,
			Conditions:  current,
		})
	}

	return out, nil
}

// PublishCurrent computes the current payload and pushes it to live clients.
// Used by the periodic refresh job.
func (s *MonitoringService) PublishCurrent(ctx context.Context) error {
	payload, err := s.CurrentReading(ctx)
	if err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast("new_reading", payload)
	}
	return nil
}
