package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"weatherbox/internal/forecast"
	"weatherbox/internal/models"
	"weatherbox/internal/repository"
)

var errEmptyEventType = errors.New("event type is required")

type EventsService struct {
	events      repository.EventRepo
	readings    repository.ReadingRepo
	broadcaster Broadcaster
}

func NewEventsService(events repository.EventRepo, readings repository.ReadingRepo, broadcaster Broadcaster) *EventsService {
	return &EventsService{events: events, readings: readings, broadcaster: broadcaster}
}

// Tag records an operator-observed event together with a snapshot of current
// conditions and the predictions that were active at tagging time, then
// notifies live clients.
func (s *EventsService) Tag(ctx context.Context, p TagParams) (models.WeatherEvent, error) {
	eventType := strings.ToLower(strings.TrimSpace(p.EventType))
	if eventType == "" {
		return models.WeatherEvent{}, errEmptyEventType
	}

	now := time.Now().UTC()
	event := models.WeatherEvent{
		EventID:    uuid.NewString(),
		OccurredAt: now,
		EventType:  eventType,
		Intensity:  strings.TrimSpace(p.Intensity),
		Notes:      strings.TrimSpace(p.Notes),
	}

	// Snapshot conditions and active predictions; a tag without them is
	// still worth keeping.
	if current, err := s.readings.Current(ctx); err == nil && current != nil {
		event.Conditions = current
		windows := func(lookback time.Duration) []models.Reading {
			w, err := s.readings.Recent(ctx, lookback)
			if err != nil {
				return nil
			}
			return w
		}
		event.Predictions = forecast.Predict(current, windows, now).Messages
	}

	if err := s.events.Append(ctx, event); err != nil {
		return models.WeatherEvent{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("event_tag", event)
		if recent, err := s.events.ListRecent(ctx, 0); err == nil {
			s.broadcaster.Broadcast("events_update", recent)
		}
	}

	return event, nil
}

// Recent returns the latest tagged events, newest first.
func (s *EventsService) Recent(ctx context.Context, limit int) ([]models.WeatherEvent, error) {
	return s.events.ListRecent(ctx, limit)
}
