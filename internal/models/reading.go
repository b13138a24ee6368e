package models

import "time"

// Reading is a single validated sensor sample. Pressure is optional because
// the barometer reports less often than the DHT22 and may be absent entirely.
type Reading struct {
	Timestamp    time.Time `json:"timestamp"`
	TemperatureF float64   `json:"temperature_f"`
	TemperatureC float64   `json:"temperature_c"`
	Humidity     float64   `json:"humidity"` // relative, 0–100
	PressureHPa  *float64  `json:"pressure_hpa,omitempty"`
}

// Pressure returns the pressure value and whether it is present.
func (r Reading) Pressure() (float64, bool) {
	if r.PressureHPa == nil {
		return 0, false
	}
	return *r.PressureHPa, true
}

// PressurePoint is a single pressure sample for the pressure history chart.
type PressurePoint struct {
	Timestamp   time.Time `json:"timestamp"`
	PressureHPa float64   `json:"pressure_hpa"`
}
