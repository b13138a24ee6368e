package weatherapi

import (
	"context"
	"fmt"
	"time"

	"weatherbox/internal/models"
)

// Per-parameter calibration thresholds: within the first bound is
// excellent, within the second is good, beyond it the sensor likely
// needs attention.
var (
	temperatureThresholds = [2]float64{2, 5}  // °F
	humidityThresholds    = [2]float64{5, 10} // %
	pressureThresholds    = [2]float64{3, 7}  // hPa
)

// FieldComparison is one local-vs-official delta, display-ready.
type FieldComparison struct {
	Parameter  string `json:"parameter"`
	Local      string `json:"local"`
	Official   string `json:"official"`
	Difference string `json:"difference"`
	Status     string `json:"status"`
}

// Comparison is the full sanity-check result for one reading.
type Comparison struct {
	OfficialSource string            `json:"official_source"`
	OfficialTime   time.Time         `json:"official_time"`
	Comparisons    []FieldComparison `json:"comparisons"`
	OverallStatus  string            `json:"summary_status"`
}

func differenceStatus(absDiff float64, thresholds [2]float64) string {
	switch {
	case absDiff <= thresholds[0]:
		return "excellent"
	case absDiff <= thresholds[1]:
		return "good"
	default:
		return "check_calibration"
	}
}

func overallStatus(comparisons []FieldComparison) string {
	if len(comparisons) == 0 {
		return "no_data"
	}
	allExcellent, allGoodOrBetter := true, true
	for _, c := range comparisons {
		if c.Status != "excellent" {
			allExcellent = false
		}
		if c.Status != "excellent" && c.Status != "good" {
			allGoodOrBetter = false
		}
		if c.Status == "check_calibration" {
			return "check_calibration"
		}
	}
	if allExcellent {
		return "excellent"
	}
	if allGoodOrBetter {
		return "good"
	}
	return "mixed"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Compare checks a local reading against the official observation. Upstream
// failures degrade to an "unavailable" result, never an error: comparison is
// context, not a dependency.
func (c *Client) Compare(ctx context.Context, local models.Reading) Comparison {
	official, err := c.Official(ctx)
	if err != nil || official == nil {
		return Comparison{OverallStatus: "unavailable"}
	}

	result := Comparison{
		OfficialSource: fmt.Sprintf("%s (%.4f, %.4f)", official.Source, c.cfg.Lat, c.cfg.Lon),
		OfficialTime:   official.Timestamp,
	}

	if official.TemperatureF != nil {
		diff := local.TemperatureF - *official.TemperatureF
		result.Comparisons = append(result.Comparisons, FieldComparison{
			Parameter:  "Temperature",
			Local:      fmt.Sprintf("%.1f°F", local.TemperatureF),
			Official:   fmt.Sprintf("%.1f°F", *official.TemperatureF),
			Difference: fmt.Sprintf("%+.1f°F", diff),
			Status:     differenceStatus(abs(diff), temperatureThresholds),
		})
	}

	if official.Humidity != nil {
		diff := local.Humidity - *official.Humidity
		result.Comparisons = append(result.Comparisons, FieldComparison{
			Parameter:  "Humidity",
			Local:      fmt.Sprintf("%.1f%%", local.Humidity),
			Official:   fmt.Sprintf("%.1f%%", *official.Humidity),
			Difference: fmt.Sprintf("%+.1f%%", diff),
			Status:     differenceStatus(abs(diff), humidityThresholds),
		})
	}

	if p, ok := local.Pressure(); ok && official.PressureHPa != nil {
		diff := p - *official.PressureHPa
		result.Comparisons = append(result.Comparisons, FieldComparison{
			Parameter:  "Pressure",
			Local:      fmt.Sprintf("%.1f hPa", p),
			Official:   fmt.Sprintf("%.1f hPa", *official.PressureHPa),
			Difference: fmt.Sprintf("%+.1f hPa", diff),
			Status:     differenceStatus(abs(diff), pressureThresholds),
		})
	}

	result.OverallStatus = overallStatus(result.Comparisons)
	return result
}
