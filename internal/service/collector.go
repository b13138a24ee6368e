package service

import (
	"context"
	"math"
	"math/rand"
	"time"

	"weatherbox/internal/models"
	"weatherbox/internal/repository"
)

// Synthetic sensor baselines. The collector stands in for a DHT22 plus a
// barometer: a diurnal temperature cycle with humidity moving opposite to
// temperature and pressure on a slow bounded walk.
const (
	baseTempF       = 68.0
	diurnalSwingF   = 12.0
	baseHumidityPct = 55.0
	basePressureHPa = 1015.0
	tempJitterF     = 0.6
	humidityJitter  = 1.5
	pressureJitter  = 0.15
	pressureSpanHPa = 25.0
	pressureCadence = 4 // barometer reports every Nth tick
)

type CollectorService struct {
	readings repository.ReadingRepo

	rng       *rand.Rand
	pressure  float64
	tickCount int
}

func NewCollectorService(readings repository.ReadingRepo) *CollectorService {
	return &CollectorService{
		readings: readings,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		pressure: basePressureHPa,
	}
}

// Run samples the synthetic sensors at the given interval until ctx is
// canceled. Insert failures are skipped; the next tick retries naturally.
func (s *CollectorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			reading := s.sample(now.UTC())
			_ = s.readings.Insert(ctx, reading)
		}
	}
}

// sample produces one plausible reading for the given instant.
func (s *CollectorService) sample(now time.Time) models.Reading {
	// Diurnal cycle peaking mid-afternoon.
	hourOfDay := float64(now.Hour()) + float64(now.Minute())/60
	phase := (hourOfDay - 15) / 24 * 2 * math.Pi
	tempF := baseTempF + diurnalSwingF/2*math.Cos(phase) + s.rng.NormFloat64()*tempJitterF

	// Humidity runs inverse to the temperature cycle.
	humidity := baseHumidityPct - diurnalSwingF*math.Cos(phase) + s.rng.NormFloat64()*humidityJitter
	humidity = clamp(humidity, 5, 100)

	reading := models.Reading{
		Timestamp:    now,
		TemperatureF: round1(tempF),
		TemperatureC: round1((tempF - 32) * 5 / 9),
		Humidity:     round1(humidity),
	}

	// Bounded pressure walk, reported at the barometer's slower cadence.
	s.pressure += s.rng.NormFloat64() * pressureJitter
	s.pressure = clamp(s.pressure, basePressureHPa-pressureSpanHPa, basePressureHPa+pressureSpanHPa)
	s.tickCount++
	if s.tickCount%pressureCadence == 0 {
		p := round1(s.pressure)
		reading.PressureHPa = &p
	}

	return reading
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
