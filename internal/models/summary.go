package models

import "time"

// DailySummary is the min/max aggregation over one day of readings.
// Pressure and feels-like fields are nil when no qualifying readings exist.
type DailySummary struct {
	TempHigh        float64  `json:"temp_high"`
	TempLow         float64  `json:"temp_low"`
	HumidityHigh    float64  `json:"humidity_high"`
	HumidityLow     float64  `json:"humidity_low"`
	PressureHigh    *float64 `json:"pressure_high,omitempty"`
	PressureLow     *float64 `json:"pressure_low,omitempty"`
	PressureCurrent *float64 `json:"pressure_current,omitempty"`
	FeelsLikeHigh   *float64 `json:"feels_like_high,omitempty"`
	FeelsLikeLow    *float64 `json:"feels_like_low,omitempty"`
	ReadingsCount   int      `json:"readings_count"`
}

// PeriodSummary aggregates an arbitrary date range for the analysis view.
type PeriodSummary struct {
	ReadingCount    int      `json:"reading_count"`
	PredictionCount int      `json:"prediction_count"`
	EventCount      int      `json:"event_count"`
	TempHigh        *float64 `json:"temp_high,omitempty"`
	TempLow         *float64 `json:"temp_low,omitempty"`
	TempAvg         *float64 `json:"temp_avg,omitempty"`
	HumidityHigh    *float64 `json:"humidity_high,omitempty"`
	HumidityLow     *float64 `json:"humidity_low,omitempty"`
	HumidityAvg     *float64 `json:"humidity_avg,omitempty"`
	PressureHigh    *float64 `json:"pressure_high,omitempty"`
	PressureLow     *float64 `json:"pressure_low,omitempty"`
	PressureAvg     *float64 `json:"pressure_avg,omitempty"`
}

// Analysis bundles everything the historical analysis page needs for a range.
type Analysis struct {
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	WeatherData []Reading          `json:"weather_data"`
	Predictions []PredictionRecord `json:"predictions"`
	Events      []WeatherEvent     `json:"events"`
	Summary     PeriodSummary      `json:"summary"`
}
