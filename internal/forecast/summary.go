package forecast

import (
	"github.com/montanaflynn/stats"

	"weatherbox/internal/models"
)

// Plausible atmospheric pressure bounds for summary purposes. Samples at or
// beyond the bounds are treated as sensor glitches and excluded.
const (
	minPlausiblePressureHPa = 800.0
	maxPlausiblePressureHPa = 1100.0
)

func plausiblePressure(p float64) bool {
	return p > minPlausiblePressureHPa && p < maxPlausiblePressureHPa
}

func minMax(vals stats.Float64Data) (lo, hi float64, ok bool) {
	if len(vals) == 0 {
		return 0, 0, false
	}
	lo, err := stats.Min(vals)
	if err != nil {
		return 0, 0, false
	}
	hi, err = stats.Max(vals)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

func ptr(v float64) *float64 { return &v }

// Summarize aggregates one day's readings into min/max ranges. Returns nil
// for an empty window. Pressure figures only cover readings whose pressure is
// present and plausible; the feels-like range covers every reading since
// temperature and humidity are always present.
func Summarize(window []models.Reading) *models.DailySummary {
	if len(window) == 0 {
		return nil
	}

	var temps, humidities, pressures, feelsLike stats.Float64Data
	for _, r := range window {
		temps = append(temps, r.TemperatureF)
		humidities = append(humidities, r.Humidity)
		if p, ok := r.Pressure(); ok && plausiblePressure(p) {
			pressures = append(pressures, p)
		}
		feelsLike = append(feelsLike, FeelsLike(r.TemperatureF, r.Humidity, 0))
	}

	summary := &models.DailySummary{ReadingsCount: len(window)}

	if lo, hi, ok := minMax(temps); ok {
		summary.TempLow, summary.TempHigh = lo, hi
	}
	if lo, hi, ok := minMax(humidities); ok {
		summary.HumidityLow, summary.HumidityHigh = lo, hi
	}
	if lo, hi, ok := minMax(pressures); ok {
		summary.PressureLow = ptr(lo)
		summary.PressureHigh = ptr(hi)
		summary.PressureCurrent = ptr(pressures[len(pressures)-1])
	}
	if lo, hi, ok := minMax(feelsLike); ok {
		summary.FeelsLikeLow = ptr(lo)
		summary.FeelsLikeHigh = ptr(hi)
	}

	return summary
}

// SummarizePeriod aggregates an arbitrary range for the analysis view,
// adding averages on top of the min/max ranges.
func SummarizePeriod(window []models.Reading, predictionCount, eventCount int) models.PeriodSummary {
	summary := models.PeriodSummary{
		ReadingCount:    len(window),
		PredictionCount: predictionCount,
		EventCount:      eventCount,
	}
	if len(window) == 0 {
		return summary
	}

	var temps, humidities, pressures stats.Float64Data
	for _, r := range window {
		temps = append(temps, r.TemperatureF)
		humidities = append(humidities, r.Humidity)
		if p, ok := r.Pressure(); ok && plausiblePressure(p) {
			pressures = append(pressures, p)
		}
	}

	if lo, hi, ok := minMax(temps); ok {
		mean, _ := stats.Mean(temps)
		summary.TempLow, summary.TempHigh, summary.TempAvg = ptr(lo), ptr(hi), ptr(mean)
	}
	if lo, hi, ok := minMax(humidities); ok {
		mean, _ := stats.Mean(humidities)
		summary.HumidityLow, summary.HumidityHigh, summary.HumidityAvg = ptr(lo), ptr(hi), ptr(mean)
	}
	if lo, hi, ok := minMax(pressures); ok {
		mean, _ := stats.Mean(pressures)
		summary.PressureLow, summary.PressureHigh, summary.PressureAvg = ptr(lo), ptr(hi), ptr(mean)
	}

	return summary
}
