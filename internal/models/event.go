package models

import "time"

// WeatherEvent is an operator-tagged observation ("thunderstorm", "fog", ...)
// with a snapshot of conditions at tagging time, kept for later correlation
// with the system's own predictions.
type WeatherEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	Intensity   string    `json:"intensity,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Conditions  *Reading  `json:"conditions,omitempty"`
	Predictions []string  `json:"predictions,omitempty"`
}

// PredictionRecord is one stored prediction pass, kept for historical analysis.
type PredictionRecord struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"timestamp"`
	Predictions []string  `json:"predictions"`
	Conditions  *Reading  `json:"conditions,omitempty"`
}
