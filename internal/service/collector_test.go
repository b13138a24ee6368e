package service

import (
	"context"
	"testing"
	"time"
)

func TestCollector_SampleRanges(t *testing.T) {
	t.Parallel()

	svc := NewCollectorService(&stubReadingRepo{})

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pressureSamples := 0
	for i := 0; i < 200; i++ {
		r := svc.sample(now.Add(time.Duration(i) * 30 * time.Second))
		if r.TemperatureF < 30 || r.TemperatureF > 110 {
			t.Fatalf("temperature out of plausible range: %v", r.TemperatureF)
		}
		if r.Humidity < 5 || r.Humidity > 100 {
			t.Fatalf("humidity out of range: %v", r.Humidity)
		}
		if p, ok := r.Pressure(); ok {
			pressureSamples++
			if p < basePressureHPa-pressureSpanHPa || p > basePressureHPa+pressureSpanHPa {
				t.Fatalf("pressure out of range: %v", p)
			}
		}
		if r.Timestamp.IsZero() {
			t.Fatal("timestamp must be stamped")
		}
	}
	// The barometer reports on a slower cadence than the DHT22.
	if pressureSamples == 0 || pressureSamples == 200 {
		t.Fatalf("want intermittent pressure, got %d of 200", pressureSamples)
	}
}

func TestCollector_RunInsertsUntilCanceled(t *testing.T) {
	t.Parallel()

	readings := &stubReadingRepo{}
	svc := NewCollectorService(readings)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(40 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on cancel")
	}
	if len(readings.inserted) == 0 {
		t.Fatal("want inserted readings")
	}
}
