package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"weatherbox/internal/logger"
	"weatherbox/internal/service"
)

const (
	defaultPushInterval = 30 * time.Second
	jobTimeout          = 10 * time.Second
)

// Scheduler periodically pushes refreshed current conditions to connected
// dashboard clients via the monitoring service.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	monitoring service.Monitoring
	interval   time.Duration
	log        *logger.Logger
}

// New creates a Scheduler pushing every interval; a non-positive interval
// falls back to the 30s default.
func New(monitoring service.Monitoring, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultPushInterval
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		monitoring: monitoring,
		interval:   interval,
		log:        log,
	}
}

// Start schedules the periodic push job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := s.monitoring.PublishCurrent(ctx); err != nil && s.log != nil {
			s.log.Errorw("scheduled_push_failed", "err", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
