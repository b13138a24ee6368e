package forecast

import "math"

// Magnus formula coefficients (°C).
const (
	magnusA = 17.27
	magnusB = 237.7
)

// DewPointSentinelF is returned by DewPointF when humidity is zero or
// negative: log(0) is undefined, so instead of failing we report a dew point
// far below anything physical. Callers must special-case this value.
const DewPointSentinelF = -100.0

func fToC(tempF float64) float64 { return (tempF - 32) * 5 / 9 }

func cToF(tempC float64) float64 { return tempC*9/5 + 32 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// DewPointF computes the dew point in °F from air temperature and relative
// humidity using the Magnus approximation.
func DewPointF(tempF, humidity float64) float64 {
	if humidity <= 0 {
		return DewPointSentinelF
	}
	tempC := fToC(tempF)
	alpha := (magnusA*tempC)/(magnusB+tempC) + math.Log(humidity/100.0)
	dewC := (magnusB * alpha) / (magnusA - alpha)
	return cToF(dewC)
}

// HeatIndex computes the NWS heat index via the full Rothfusz regression.
// Outside its valid domain (below 80°F or 40% humidity) the heat index is
// physically meaningless and the air temperature is returned unchanged.
func HeatIndex(tempF, humidity float64) float64 {
	if tempF < 80 || humidity < 40 {
		return tempF
	}

	hi := -42.379 + 2.04901523*tempF + 10.14333127*humidity
	hi += -0.22475541*tempF*humidity - 6.83783e-3*tempF*tempF
	hi += -5.481717e-2*humidity*humidity + 1.22874e-3*tempF*tempF*humidity
	hi += 8.5282e-4*tempF*humidity*humidity - 1.99e-6*tempF*tempF*humidity*humidity

	// Documented corrections for very dry and very humid air.
	if humidity < 13 && tempF >= 80 && tempF <= 112 {
		hi -= ((13 - humidity) / 4) * math.Sqrt((17-math.Abs(tempF-95.0))/17)
	} else if humidity > 85 && tempF >= 80 && tempF <= 87 {
		hi += ((humidity - 85) / 10) * ((87 - tempF) / 5)
	}

	return round1(hi)
}

// WindChill computes the NWS wind chill. Above 50°F or below 3 mph the
// formula does not apply and the air temperature is returned unchanged.
func WindChill(tempF, windMph float64) float64 {
	if tempF > 50 || windMph < 3 {
		return tempF
	}

	wc := 35.74 + 0.6215*tempF - 35.75*math.Pow(windMph, 0.16)
	wc += 0.4275 * tempF * math.Pow(windMph, 0.16)

	return round1(wc)
}

// ApparentTemperature computes the perceived temperature for moderate
// conditions not covered by heat index or wind chill. Inputs are Celsius and
// m/s; the result is °F.
func ApparentTemperature(tempC, humidity, windMs float64) float64 {
	// Vapor pressure in hPa from Magnus-style saturation.
	e := (humidity / 100) * 6.105 * math.Exp(magnusA*tempC/(magnusB+tempC))

	at := tempC + 0.33*e - 0.7*windMs - 4.0

	return round1(cToF(at))
}

const mphToMs = 0.44704

// FeelsLike dispatches to the formula valid for the current regime:
// heat index for hot humid air, wind chill for cold windy air, apparent
// temperature otherwise. The heat-index predicate is checked first; at the
// 50°F boundary with wind the wind-chill branch wins over apparent
// temperature because its domain is inclusive (<= 50).
func FeelsLike(tempF, humidity, windMph float64) float64 {
	switch {
	case tempF >= 80 && humidity >= 40:
		return HeatIndex(tempF, humidity)
	case tempF <= 50 && windMph >= 3:
		return WindChill(tempF, windMph)
	default:
		return ApparentTemperature(fToC(tempF), humidity, windMph*mphToMs)
	}
}

// ComfortDescriptions renders human-readable comfort lines for the dashboard
// from a feels-like temperature and the current humidity.
func ComfortDescriptions(feelsLike, humidity float64) []string {
	var descriptions []string

	switch {
	case feelsLike < 32:
		descriptions = append(descriptions, "❄️ Freezing conditions")
	case feelsLike < 50:
		descriptions = append(descriptions, "🧥 Cold - dress warmly")
	case feelsLike < 65:
		descriptions = append(descriptions, "🧤 Cool - light jacket recommended")
	case feelsLike <= 75:
		descriptions = append(descriptions, "😌 Comfortable conditions")
	case feelsLike <= 80:
		descriptions = append(descriptions, "☀️ Warm and pleasant")
	case feelsLike <= 90:
		descriptions = append(descriptions, "🌡️ Hot - seek shade")
	case feelsLike <= 105:
		descriptions = append(descriptions, "🥵 Very hot - limit outdoor activity")
	default:
		descriptions = append(descriptions, "🚨 Dangerous heat - stay indoors")
	}

	if humidity > 70 {
		descriptions = append(descriptions, "💧 High humidity - feels muggy")
	} else if humidity < 30 {
		descriptions = append(descriptions, "🏜️ Low humidity - may feel dry")
	}

	return descriptions
}
