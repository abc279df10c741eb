// Package scheduler runs the periodic enrollment jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/careacademy/academy-backend/internal/logger"
	"github.com/careacademy/academy-backend/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job names, also used as metric labels.
const (
	JobIntakeReminder = "intake_reminder"
	JobAutoComplete   = "auto_complete"
)

// jobTimeout bounds a single run.
const jobTimeout = 10 * time.Minute

// Jobs is the work the scheduler triggers. Each call returns how many
// enrollments it touched.
type Jobs interface {
	SendReminders(ctx context.Context) (int, error)
	CompleteFinished(ctx context.Context) (int, error)
}

// Scheduler wraps a cron runner with the academy jobs registered.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New registers the reminder and auto-complete jobs on their cron specs.
func New(jobs Jobs, reminderSpec, completionSpec string, log zerolog.Logger) (*Scheduler, error) {
	log = log.With().Str("component", "scheduler").Logger()
	adapter := logger.CronAdapter{Log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		log: log,
	}

	if _, err := s.cron.AddFunc(reminderSpec, s.wrap(JobIntakeReminder, jobs.SendReminders)); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", JobIntakeReminder, err)
	}
	if _, err := s.cron.AddFunc(completionSpec, s.wrap(JobAutoComplete, jobs.CompleteFinished)); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", JobAutoComplete, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop prevents new runs and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn().Msg("Scheduler stop timed out with jobs still running")
	}
}

func (s *Scheduler) wrap(name string, fn func(ctx context.Context) (int, error)) func() {
	return func() {
		s.run(context.Background(), name, fn)
	}
}

func (s *Scheduler) run(ctx context.Context, name string, fn func(ctx context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := fn(ctx)
	elapsed := time.Since(start)
	metrics.RecordCronRun(name, elapsed, err == nil)

	if err != nil {
		s.log.Error().Err(err).Str("job", name).Dur("took", elapsed).Msg("Job failed")
		return
	}
	s.log.Info().Str("job", name).Int("count", n).Dur("took", elapsed).Msg("Job finished")
}
