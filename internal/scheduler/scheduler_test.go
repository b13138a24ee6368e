package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"weatherbox/internal/service"
)

type stubMonitoring struct {
	calls atomic.Int64
}

func (s *stubMonitoring) CurrentReading(ctx context.Context) (*service.CurrentConditions, error) {
	return nil, nil
}

func (s *stubMonitoring) PublishCurrent(ctx context.Context) error {
	s.calls.Add(1)
	return nil
}

func TestSchedulerRunsPushJob(t *testing.T) {
	mon := &stubMonitoring{}
	sched := New(mon, 50*time.Millisecond, nil)

	if err := sched.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for mon.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("push job never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	sched := New(&stubMonitoring{}, 0, nil)
	if sched.interval != defaultPushInterval {
		t.Fatalf("interval: got %v, want %v", sched.interval, defaultPushInterval)
	}
}
