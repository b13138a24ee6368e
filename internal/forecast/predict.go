package forecast

import (
	"fmt"
	"time"

	"weatherbox/internal/models"
)

// WindowProvider supplies a reading window covering the given lookback,
// ordered ascending by timestamp. The engine pulls windows on demand since
// not every rule needs every window. Providers must not fail; on error they
// return an empty window and the dependent rules simply stay silent.
type WindowProvider func(lookback time.Duration) []models.Reading

// PredictionSet is the ordered output of one prediction pass. Messages are
// display-ready and ordering is significant: current-condition detections
// first (followed by a separator), the confidence banner at the top once any
// forecast rule fires, comfort and caveat lines last.
type PredictionSet struct {
	Messages   []string `json:"messages"`
	Confidence float64  `json:"confidence"`
}

// PredictionItem is a single fired rule: its display text plus the signal
// key and confidence used for aggregation. Items from current-condition
// detectors carry no signal key and do not participate in the banner.
type PredictionItem struct {
	Text       string
	SignalKey  string
	Confidence float64
}

const noCurrentDataMessage = "No current data available"

// Signal keys that denote severe weather for confidence aggregation.
var severeSignalKeys = map[string]bool{
	"storm":          true,
	"thunderstorm":   true,
	"deteriorating":  true,
	"storm_clearing": true,
}

// Signal keys that receive double weight in the routine average. No current
// rule emits them; the weighting is kept for rules added later.
var doubleWeightSignalKeys = map[string]bool{
	"pressure_change": true,
	"dewpoint":        true,
}

// ruleContext carries everything a rule needs to decide whether it fires.
type ruleContext struct {
	current  models.Reading
	tempF    float64
	humidity float64
	pressure *float64

	dewPointF float64
	spreadF   float64

	// pressureChangeRate is hPa over the last hour (last minus first
	// pressure-bearing reading); zero when pressure is absent or the
	// window is too thin.
	pressureChangeRate float64

	windows WindowProvider
	now     time.Time
}

// predictionDewPoint is the engine's degenerate-math-safe dew point: when the
// Magnus formula has no valid domain the spread is approximated as 20°F.
func predictionDewPoint(tempF, humidity float64) float64 {
	dew := DewPointF(tempF, humidity)
	if dew == DewPointSentinelF {
		return tempF - 20
	}
	return dew
}

func pressureReadings(window []models.Reading) []float64 {
	var vals []float64
	for _, r := range window {
		if p, ok := r.Pressure(); ok {
			vals = append(vals, p)
		}
	}
	return vals
}

func newRuleContext(current models.Reading, windows WindowProvider, now time.Time) *ruleContext {
	ctx := &ruleContext{
		current:  current,
		tempF:    current.TemperatureF,
		humidity: current.Humidity,
		pressure: current.PressureHPa,
		windows:  windows,
		now:      now,
	}

	ctx.dewPointF = predictionDewPoint(ctx.tempF, ctx.humidity)
	ctx.spreadF = ctx.tempF - ctx.dewPointF

	if ctx.pressure != nil {
		vals := pressureReadings(windows(time.Hour))
		if len(vals) >= 2 {
			ctx.pressureChangeRate = vals[len(vals)-1] - vals[0]
		}
	}

	return ctx
}

// A rule inspects the context and returns zero or more fired items.
// Rules are evaluated in a fixed order and never see each other's output,
// which keeps the cascade auditable.
type rule func(*ruleContext) []PredictionItem

// --- current-condition detectors (no signal keys) ---

func detectPrecipitation(ctx *ruleContext) []PredictionItem {
	sustained := false
	if ctx.humidity >= 92 {
		recent := ctx.windows(10 * time.Minute)
		if len(recent) >= 3 {
			high := 0
			for _, r := range recent {
				if r.Humidity >= 92 {
					high++
				}
			}
			sustained = float64(high) >= float64(len(recent))*0.7
		}
	}

	if ctx.humidity >= 92 && (ctx.pressureChangeRate <= -1.5 || sustained) {
		return []PredictionItem{{Text: "🌧️ HEAVY PRECIPITATION LIKELY/ONGOING - High humidity with pressure fall or sustained moisture"}}
	}
	if ctx.humidity > 85 {
		return []PredictionItem{{Text: "🌦️ LIGHT PRECIPITATION POSSIBLE - Very high humidity"}}
	}
	return nil
}

func detectThunderstorm(ctx *ruleContext) []PredictionItem {
	switch {
	case ctx.tempF >= 82 && ctx.dewPointF >= 66 && ctx.pressureChangeRate <= -1.5:
		return []PredictionItem{{Text: "⛈️ THUNDERSTORM LIKELY (2-6h) - Heat + moisture + pressure fall"}}
	case ctx.tempF >= 78 && ctx.dewPointF >= 70 && ctx.spreadF <= 12:
		return []PredictionItem{{Text: "⚡ THUNDERSTORM POSSIBLE - High dewpoint with low spread"}}
	case ctx.tempF >= 75:
		recent := ctx.windows(30 * time.Minute)
		if len(recent) >= 2 {
			change := recent[len(recent)-1].Humidity - recent[0].Humidity
			if change >= 8 {
				return []PredictionItem{{Text: "⚡ THUNDERSTORM POSSIBLE - Rapid moisture increase detected"}}
			}
		}
	}
	return nil
}

func detectPressureVolatility(ctx *ruleContext) []PredictionItem {
	recent := ctx.windows(30 * time.Minute)
	if len(recent) < 3 {
		return nil
	}
	vals := pressureReadings(recent)
	if len(vals) < 3 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi-lo > 2 {
		return []PredictionItem{{Text: "🌪️ PRESSURE VOLATILITY - Active weather system present"}}
	}
	return nil
}

// --- pressure-band forecast: an ordered chain, first match wins ---

func pressureBandForecast(ctx *ruleContext) []PredictionItem {
	if ctx.pressure == nil {
		return nil
	}
	p := *ctx.pressure
	switch {
	case p < 980:
		return []PredictionItem{{Text: "⛈️ Major storm system - severe weather imminent", SignalKey: "storm", Confidence: 95}}
	case p < 995 && ctx.pressureChangeRate < -2:
		return []PredictionItem{{Text: "⛈️ Rapidly intensifying storm approaching", SignalKey: "storm", Confidence: 85}}
	case p < 1000:
		return []PredictionItem{{Text: "🌧️ Low pressure system - rain/storms likely within 6-12 hours", SignalKey: "rain", Confidence: 75}}
	case p < 1010:
		if ctx.humidity > 70 {
			return []PredictionItem{{Text: "🌦️ Unsettled weather - scattered showers possible", SignalKey: "rain", Confidence: 60}}
		}
		return []PredictionItem{{Text: "☁️ Cloudy conditions expected", SignalKey: "clouds", Confidence: 70}}
	case p > 1030:
		return []PredictionItem{{Text: "☀️ High pressure - clear, stable weather for 24+ hours", SignalKey: "clear", Confidence: 90}}
	case p > 1020:
		return []PredictionItem{{Text: "🌤️ Fair weather expected", SignalKey: "fair", Confidence: 80}}
	}
	return nil
}

// --- pressure-rate forecast: independent of the absolute band ---

func pressureRateForecast(ctx *ruleContext) []PredictionItem {
	if ctx.pressure == nil {
		return nil
	}
	rate := ctx.pressureChangeRate
	switch {
	case rate < -3:
		return []PredictionItem{{
			Text:       fmt.Sprintf("⚠️ Pressure falling rapidly (%.1f hPa/hr) - weather deteriorating within 2-4 hours", rate),
			SignalKey:  "deteriorating",
			Confidence: 85,
		}}
	case rate < -1.5:
		return []PredictionItem{{
			Text:       fmt.Sprintf("📉 Pressure falling (%.1f hPa/hr) - weather change within 6-8 hours", rate),
			SignalKey:  "change",
			Confidence: 70,
		}}
	case rate > 2:
		if ctx.humidity > 80 {
			return []PredictionItem{{
				Text:       fmt.Sprintf("🌤️ STORM CLEARING - Pressure rising rapidly (%.1f hPa/hr) after high humidity", rate),
				SignalKey:  "storm_clearing",
				Confidence: 90,
			}}
		}
		return []PredictionItem{{
			Text:       fmt.Sprintf("📈 Pressure rising rapidly (%.1f hPa/hr) - clearing conditions", rate),
			SignalKey:  "clearing",
			Confidence: 80,
		}}
	case rate > 1:
		if ctx.humidity > 75 {
			return []PredictionItem{{
				Text:       fmt.Sprintf("🌤️ Weather improving - Pressure rising (%.1f hPa/hr) as moisture decreases", rate),
				SignalKey:  "improving",
				Confidence: 75,
			}}
		}
	}
	return nil
}

// instabilityThunderstorm gates on a simplified lifted index: the
// temperature/dew-point spread offset by 10, negative meaning unstable.
func instabilityThunderstorm(ctx *ruleContext) []PredictionItem {
	if ctx.pressure == nil {
		return nil
	}
	if ctx.tempF > 75 && ctx.humidity > 65 && *ctx.pressure < 1015 && ctx.pressureChangeRate < -1 {
		liftedIndex := ctx.spreadF - 10
		if liftedIndex < 0 {
			return []PredictionItem{{Text: "⛈️ Thunderstorm likely within 2-6 hours (unstable atmosphere)", SignalKey: "thunderstorm", Confidence: 80}}
		}
	}
	return nil
}

func winterPrecipitation(ctx *ruleContext) []PredictionItem {
	if ctx.pressure == nil {
		return nil
	}
	if ctx.tempF < 38 && *ctx.pressure < 1010 && ctx.humidity > 70 {
		if ctx.tempF <= 32 {
			return []PredictionItem{{Text: "❄️ Snow likely - winter storm conditions developing", SignalKey: "snow", Confidence: 75}}
		}
		return []PredictionItem{{Text: "🌨️ Wintry mix possible (rain/sleet/snow)", SignalKey: "winter_mix", Confidence: 65}}
	}
	return nil
}

func fogForecast(ctx *ruleContext) []PredictionItem {
	pressureTrend := PressureTrend(ctx.windows(time.Hour), time.Hour)
	humidityTrend := HumidityTrend(ctx.windows(6*time.Hour), 6*time.Hour)
	fog := FogLikelihood(ctx.current, ctx.now, pressureTrend, humidityTrend)
	if fog == nil {
		return nil
	}
	return []PredictionItem{{Text: fog.Message, SignalKey: "fog", Confidence: fog.Probability}}
}

// heatAdvisory uses the quick linear heat-index estimate rather than the full
// Rothfusz regression; the advisory thresholds were tuned against it.
func heatAdvisory(ctx *ruleContext) []PredictionItem {
	if ctx.tempF <= 80 {
		return nil
	}
	heatIndex := ctx.tempF - (0.55-0.55*ctx.humidity/100)*(ctx.tempF-58)
	switch {
	case heatIndex > 105:
		return []PredictionItem{{
			Text:       fmt.Sprintf("🥵 Dangerous heat - heat index %.0f°F", heatIndex),
			SignalKey:  "heat_danger",
			Confidence: 95,
		}}
	case heatIndex > 90:
		return []PredictionItem{{
			Text:       fmt.Sprintf("🌡️ Heat advisory - heat index %.0f°F", heatIndex),
			SignalKey:  "heat_advisory",
			Confidence: 85,
		}}
	}
	return nil
}

func frostForecast(ctx *ruleContext) []PredictionItem {
	if ctx.pressure == nil || *ctx.pressure <= 1020 {
		return nil
	}
	if ctx.tempF < 40 && ctx.humidity > 70 {
		if ctx.tempF <= 32 {
			return []PredictionItem{{Text: "🧊 Frost/freeze warning tonight", SignalKey: "frost", Confidence: 85}}
		}
		if ctx.tempF <= 36 {
			return []PredictionItem{{Text: "❄️ Patchy frost possible in rural areas", SignalKey: "frost", Confidence: 60}}
		}
	}
	return nil
}

func fireWeather(ctx *ruleContext) []PredictionItem {
	if ctx.humidity < 25 && ctx.tempF > 75 {
		if ctx.humidity < 15 {
			return []PredictionItem{{Text: "🔥 Critical fire weather - extreme caution advised", SignalKey: "fire", Confidence: 90}}
		}
		return []PredictionItem{{Text: "🏜️ Very dry conditions - elevated fire risk", SignalKey: "fire", Confidence: 70}}
	}
	return nil
}

// currentConditionRules and forecastRules define the cascade order.
// Detector output precedes forecast output and is separated by "---".
var currentConditionRules = []rule{
	detectPrecipitation,
	detectThunderstorm,
	detectPressureVolatility,
}

var forecastRules = []rule{
	pressureBandForecast,
	pressureRateForecast,
	instabilityThunderstorm,
	winterPrecipitation,
	fogForecast,
	heatAdvisory,
	frostForecast,
	fireWeather,
}

// signalScore preserves insertion order; later scores for the same key
// replace the earlier value in place, mirroring map-update semantics.
type signalScore struct {
	key        string
	confidence float64
}

func upsertScore(scores []signalScore, key string, confidence float64) []signalScore {
	for i := range scores {
		if scores[i].key == key {
			scores[i].confidence = confidence
			return scores
		}
	}
	return append(scores, signalScore{key: key, confidence: confidence})
}

// combineConfidence implements noisy-OR with a severity floor. Severe signals
// (storm-class keys at >= 75) combine as independently sufficient causes and
// never report below 75%. Otherwise routine signals (>= 50) average with a
// per-key weight lookup; with the current rule set every weight is 1.0, so
// this is a plain average in practice.
func combineConfidence(scores []signalScore) float64 {
	var severe, routine []float64
	for _, s := range scores {
		if severeSignalKeys[s.key] && s.confidence >= 75 {
			severe = append(severe, s.confidence/100.0)
		} else if s.confidence >= 50 {
			routine = append(routine, s.confidence/100.0)
		}
	}

	if len(severe) > 0 {
		combined := 1.0
		for _, p := range severe {
			combined *= 1.0 - p
		}
		final := (1.0 - combined) * 100
		if final < 75 {
			final = 75
		}
		return final
	}

	if len(routine) > 0 {
		weights := make([]float64, 0, len(scores))
		for _, s := range scores {
			if doubleWeightSignalKeys[s.key] {
				weights = append(weights, 2.0)
			} else {
				weights = append(weights, 1.0)
			}
		}
		weightedSum, weightTotal := 0.0, 0.0
		for i, conf := range routine {
			weightedSum += conf * weights[i]
			weightTotal += weights[i]
		}
		if weightTotal == 0 {
			return 50
		}
		return weightedSum / weightTotal * 100
	}

	return 50
}

func confidenceBanner(confidence float64) string {
	switch {
	case confidence > 80:
		return "📊 High confidence forecast (>80%)"
	case confidence > 60:
		return "📊 Moderate confidence forecast (60-80%)"
	default:
		return "📊 Low confidence forecast (<60%) - monitor closely"
	}
}

// Predict runs the full rule cascade against the current reading. A nil
// current reading yields the single informational message rather than an
// error; rules whose inputs are missing simply stay silent.
func Predict(current *models.Reading, windows WindowProvider, now time.Time) PredictionSet {
	if current == nil {
		return PredictionSet{Messages: []string{noCurrentDataMessage}}
	}

	ctx := newRuleContext(*current, windows, now)

	var messages []string
	var scores []signalScore

	var detections []string
	for _, r := range currentConditionRules {
		for _, item := range r(ctx) {
			detections = append(detections, item.Text)
		}
	}
	if len(detections) > 0 {
		messages = append(messages, detections...)
		messages = append(messages, "---")
	}

	for _, r := range forecastRules {
		for _, item := range r(ctx) {
			messages = append(messages, item.Text)
			if item.SignalKey != "" {
				scores = upsertScore(scores, item.SignalKey, item.Confidence)
			}
		}
	}

	confidence := 0.0
	if len(messages) > 0 && len(scores) > 0 {
		confidence = combineConfidence(scores)
		messages = append([]string{confidenceBanner(confidence)}, messages...)
	}

	// Comfort and caveat lines sit below the forecast and never count
	// toward the banner.
	p, hasPressure := ctx.current.Pressure()
	switch {
	case ctx.tempF >= 68 && ctx.tempF <= 77 && ctx.humidity >= 40 && ctx.humidity <= 60 && hasPressure && p >= 1013 && p <= 1023:
		messages = append(messages, "😌 Perfect comfort conditions")
	case ctx.tempF > 85 && ctx.humidity > 70:
		messages = append(messages, "🥵 Oppressive conditions - limit outdoor activity")
	case ctx.tempF < 20:
		messages = append(messages, "🥶 Dangerously cold - limit exposure")
	}

	if len(messages) == 0 {
		if hasPressure && p >= 1013 && p <= 1023 {
			messages = append(messages, "🌤️ Normal weather conditions - no significant changes expected")
		} else {
			messages = append(messages, "🌤️ Stable conditions")
		}
	}

	return PredictionSet{Messages: messages, Confidence: confidence}
}
