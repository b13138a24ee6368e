package forecast

import (
	"fmt"
	"strings"
	"time"

	"weatherbox/internal/models"
)

type season string

const (
	winter season = "winter"
	spring season = "spring"
	summer season = "summer"
	fall   season = "fall"
)

type timePeriod string

const (
	overnight timePeriod = "overnight" // 12am-6am
	morning   timePeriod = "morning"   // 6am-10am
	midday    timePeriod = "midday"    // 10am-3pm
	evening   timePeriod = "evening"   // 3pm-12am
)

// fogSeasonalProbability is the climatological base rate of fog for a humid
// subtropical site, keyed by season and time of day.
var fogSeasonalProbability = map[season]map[timePeriod]float64{
	winter: {overnight: 0.25, morning: 0.30, midday: 0.02, evening: 0.08},
	spring: {overnight: 0.20, morning: 0.25, midday: 0.01, evening: 0.05},
	summer: {overnight: 0.15, morning: 0.20, midday: 0.001, evening: 0.03},
	fall:   {overnight: 0.22, morning: 0.28, midday: 0.02, evening: 0.07},
}

func seasonOf(month time.Month) season {
	switch month {
	case time.December, time.January, time.February:
		return winter
	case time.March, time.April, time.May:
		return spring
	case time.June, time.July, time.August:
		return summer
	default:
		return fall
	}
}

func timePeriodOf(hour int) timePeriod {
	switch {
	case hour < 6:
		return overnight
	case hour < 10:
		return morning
	case hour < 15:
		return midday
	default:
		return evening
	}
}

// FogPrediction is the result of a fog likelihood assessment.
type FogPrediction struct {
	Message     string   `json:"prediction"`
	Probability float64  `json:"probability"`
	DewPointF   float64  `json:"dewpoint_f"`
	SpreadF     float64  `json:"temp_spread"`
	Conditions  []string `json:"conditions"`
}

const (
	fogSuppressBelow = 20.0
	fogProbabilityCap = 95.0
)

// FogLikelihood scores fog probability from the dew-point spread, humidity,
// pressure regime and climatological base rates, then attenuates the raw
// score by season and time of day. Predictions below 20% are suppressed and
// nil is returned. pressureTrend and humidityTrend6h are the 1-hour pressure
// and 6-hour humidity trends; either may be insufficient.
func FogLikelihood(current models.Reading, at time.Time, pressureTrend, humidityTrend6h Trend) *FogPrediction {
	tempF := current.TemperatureF
	humidity := current.Humidity

	dewpointF := DewPointF(tempF, humidity)
	if dewpointF == DewPointSentinelF {
		return nil
	}
	spread := tempF - dewpointF

	ssn := seasonOf(at.Month())
	period := timePeriodOf(at.Hour())
	baseProbability := fogSeasonalProbability[ssn][period]

	score := 0.0
	var conditions []string

	// Dew-point spread is the dominant factor.
	switch {
	case spread <= 2:
		score += 40
		conditions = append(conditions, fmt.Sprintf("Dew point very close (%.1f°F spread)", spread))
	case spread <= 4:
		score += 20
		conditions = append(conditions, fmt.Sprintf("Dew point close (%.1f°F spread)", spread))
	case spread <= 6:
		score += 5
	}

	switch {
	case humidity >= 95:
		score += 30
		conditions = append(conditions, "Very high humidity")
	case humidity >= 90:
		score += 15
	case humidity >= 85:
		score += 5
	}

	// Stable high pressure favors radiation fog.
	if p, ok := current.Pressure(); ok && p >= 1015 && p <= 1025 {
		score += 10
		conditions = append(conditions, "Stable high pressure")
	}

	if ssn == summer {
		// Summer fog is almost exclusively an early-morning phenomenon.
		if period == morning && tempF >= 65 && tempF <= 75 {
			score += 15
			conditions = append(conditions, "Ideal morning fog temperature")
		} else if period == midday || period == evening {
			score -= 30
		}
	} else if tempF >= 35 && tempF <= 55 {
		score += 10
		conditions = append(conditions, "Favorable fog temperature range")
	}

	// No wind sensor; a stable barometer is the best available calm proxy.
	if _, ok := current.Pressure(); ok && pressureTrend.Sufficient && pressureTrend.Direction == Stable {
		score += 5
		conditions = append(conditions, "Likely calm conditions")
	}

	// Recent moisture increase (e.g. after rain) raises fog odds.
	if humidityTrend6h.Sufficient && humidityTrend6h.Direction == Rising && humidityTrend6h.Magnitude > humidityTrendRapidPct {
		score += 10
		conditions = append(conditions, "Recent moisture increase")
	}

	score *= baseProbability

	// Aggressive daytime penalty on top of the already tiny summer base rate.
	if ssn == summer && (period == midday || period == evening) {
		score *= 0.1
	}

	probability := score
	if probability > fogProbabilityCap {
		probability = fogProbabilityCap
	}

	var severity, icon string
	switch {
	case probability >= 70:
		severity, icon = "Very likely", "🌫️"
	case probability >= 40:
		severity, icon = "Likely", "🌁"
	case probability >= fogSuppressBelow:
		severity, icon = "Possible", "🌫️"
	default:
		return nil
	}

	message := fmt.Sprintf("%s Fog %s (%.0f%% chance)", icon, severity, probability)
	if len(conditions) > 0 {
		shown := conditions
		if len(shown) > 2 {
			shown = shown[:2]
		}
		message += " - " + strings.Join(shown, ", ")
	}

	if probability >= 40 {
		switch period {
		case evening:
			message += " - Developing overnight"
		case overnight:
			message += " - Through early morning"
		case morning:
			message += " - Clearing by mid-morning"
		}
	}

	return &FogPrediction{
		Message:     message,
		Probability: probability,
		DewPointF:   dewpointF,
		SpreadF:     spread,
		Conditions:  conditions,
	}
}
