package forecast

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"weatherbox/internal/models"
)

// Direction classifies which way a quantity is moving over the window.
type Direction string

const (
	Rising  Direction = "rising"
	Falling Direction = "falling"
	Stable  Direction = "stable"
)

// Trend is the result of a trend analysis. Text is the string shown on the
// dashboard; Magnitude and RatePerHour carry the underlying numbers so tests
// and downstream rules don't have to parse the string back apart. Sufficient
// is false when the window had too few qualifying readings, in which case the
// other fields are zero and Text explains the situation.
type Trend struct {
	Sufficient  bool      `json:"sufficient"`
	Direction   Direction `json:"direction,omitempty"`
	Magnitude   float64   `json:"magnitude"`
	RatePerHour float64   `json:"rate_per_hour"`
	Text        string    `json:"text"`
}

// Classification thresholds per quantity: the inner value separates stable
// from moving, the outer separates moving from moving rapidly.
const (
	tempTrendSlowF        = 2.0
	tempTrendRapidF       = 5.0
	humidityTrendSlowPct  = 5.0
	humidityTrendRapidPct = 15.0
	pressureTrendSlowHPa  = 1.0
	pressureTrendRapidHPa = 3.0
)

const (
	insufficientDataText         = "Insufficient data"
	insufficientPressureDataText = "Insufficient pressure data"

	// Pressure readings arrive less often and are noisier than the DHT22
	// channels, so the pressure trend demands more points before speaking.
	minPressureReadings = 6

	// Smoothing window for the pressure endpoints.
	pressureSmoothingHalfWindow = 15 * time.Minute

	// Floor on the rate denominator so near-coincident window centers
	// can't blow the hourly rate up.
	minTrendDurationHours = 0.1
)

func insufficient(text string) Trend {
	return Trend{Sufficient: false, Text: text}
}

// TemperatureTrend reports the temperature change across the window.
// The window must be ordered ascending by timestamp.
func TemperatureTrend(window []models.Reading, lookback time.Duration) Trend {
	if len(window) < 2 {
		return insufficient(insufficientDataText)
	}

	change := window[len(window)-1].TemperatureF - window[0].TemperatureF
	hours := lookback.Hours()
	rate := 0.0
	if hours > 0 {
		rate = change / hours
	}

	var direction Direction
	var text string
	switch {
	case change > tempTrendRapidF:
		direction, text = Rising, fmt.Sprintf("Rising rapidly (+%.1f°F)", change)
	case change > tempTrendSlowF:
		direction, text = Rising, fmt.Sprintf("Rising (+%.1f°F)", change)
	case change < -tempTrendRapidF:
		direction, text = Falling, fmt.Sprintf("Falling rapidly (%.1f°F)", change)
	case change < -tempTrendSlowF:
		direction, text = Falling, fmt.Sprintf("Falling (%.1f°F)", change)
	default:
		direction, text = Stable, fmt.Sprintf("Stable (%+.1f°F)", change)
	}

	return Trend{Sufficient: true, Direction: direction, Magnitude: change, RatePerHour: rate, Text: text}
}

// HumidityTrend reports the relative humidity change across the window.
func HumidityTrend(window []models.Reading, lookback time.Duration) Trend {
	if len(window) < 2 {
		return insufficient(insufficientDataText)
	}

	change := window[len(window)-1].Humidity - window[0].Humidity
	hours := lookback.Hours()
	rate := 0.0
	if hours > 0 {
		rate = change / hours
	}

	var direction Direction
	var text string
	switch {
	case change > humidityTrendRapidPct:
		direction, text = Rising, fmt.Sprintf("Rising rapidly (+%.1f%%)", change)
	case change > humidityTrendSlowPct:
		direction, text = Rising, fmt.Sprintf("Rising (+%.1f%%)", change)
	case change < -humidityTrendRapidPct:
		direction, text = Falling, fmt.Sprintf("Falling rapidly (%.1f%%)", change)
	case change < -humidityTrendSlowPct:
		direction, text = Falling, fmt.Sprintf("Falling (%.1f%%)", change)
	default:
		direction, text = Stable, fmt.Sprintf("Stable (%+.1f%%)", change)
	}

	return Trend{Sufficient: true, Direction: direction, Magnitude: change, RatePerHour: rate, Text: text}
}

// pressureWindowMean averages the pressure readings within half-window of the
// center time. Returns false when no readings fall inside the window.
func pressureWindowMean(window []models.Reading, center time.Time) (float64, bool) {
	lo := center.Add(-pressureSmoothingHalfWindow)
	hi := center.Add(pressureSmoothingHalfWindow)

	var vals stats.Float64Data
	for _, r := range window {
		p, ok := r.Pressure()
		if !ok {
			continue
		}
		if !r.Timestamp.Before(lo) && !r.Timestamp.After(hi) {
			vals = append(vals, p)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	mean, err := stats.Mean(vals)
	if err != nil {
		return 0, false
	}
	return mean, true
}

// PressureTrend reports the barometric change across the window using
// 30-minute window means near each end instead of the raw first/last samples,
// which damps single-sample barometer noise. The change rate is computed over
// the distance between the two window centers.
func PressureTrend(window []models.Reading, lookback time.Duration) Trend {
	var withPressure []models.Reading
	for _, r := range window {
		if _, ok := r.Pressure(); ok {
			withPressure = append(withPressure, r)
		}
	}
	if len(withPressure) < minPressureReadings {
		return insufficient(insufficientPressureDataText)
	}

	first := withPressure[0]
	last := withPressure[len(withPressure)-1]
	c0 := first.Timestamp.Add(pressureSmoothingHalfWindow)
	c1 := last.Timestamp.Add(-pressureSmoothingHalfWindow)

	p0, ok := pressureWindowMean(withPressure, c0)
	if !ok {
		p0, _ = first.Pressure()
	}
	p1, ok := pressureWindowMean(withPressure, c1)
	if !ok {
		p1, _ = last.Pressure()
	}

	durationHours := c1.Sub(c0).Hours()
	if durationHours < minTrendDurationHours {
		durationHours = minTrendDurationHours
	}

	change := p1 - p0
	rate := change / durationHours
	hours := lookback.Hours()

	var direction Direction
	var text string
	switch {
	case change < -pressureTrendRapidHPa:
		direction = Falling
		text = fmt.Sprintf("Falling rapidly (%.1f hPa in %.0fh, %.1f hPa/hr)", change, hours, rate)
	case change < -pressureTrendSlowHPa:
		direction = Falling
		text = fmt.Sprintf("Falling (%.1f hPa in %.0fh, %.1f hPa/hr)", change, hours, rate)
	case change > pressureTrendRapidHPa:
		direction = Rising
		text = fmt.Sprintf("Rising rapidly (+%.1f hPa in %.0fh, %.1f hPa/hr)", change, hours, rate)
	case change > pressureTrendSlowHPa:
		direction = Rising
		text = fmt.Sprintf("Rising (+%.1f hPa in %.0fh, %.1f hPa/hr)", change, hours, rate)
	default:
		direction = Stable
		text = fmt.Sprintf("Stable (%+.1f hPa in %.0fh)", change, hours)
	}

	return Trend{Sufficient: true, Direction: direction, Magnitude: change, RatePerHour: rate, Text: text}
}
