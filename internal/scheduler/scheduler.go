// Package scheduler runs periodic graph refreshes for the server.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// Task is one scheduled unit of work. ctx is canceled when the scheduler stops.
type Task func(ctx context.Context)

// Scheduler wraps a gocron scheduler. A job never overlaps with itself; a run
// that is due while the previous one is still busy is skipped.
type Scheduler struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{scheduler: s, ctx: ctx, cancel: cancel}, nil
}

// Start begins running scheduled jobs. Jobs stop receiving a live context
// once ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.cancel()
		case <-s.ctx.Done():
		}
	}()

	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	slog.Info("Stopping scheduler")
	s.cancel()
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs task every interval and returns the job id.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task Task) (string, error) {
	if interval <= 0 {
		return "", errors.New("interval must be positive")
	}
	return s.schedule(name, gocron.DurationJob(interval), task)
}

// ScheduleCron runs task on a five-field cron expression and returns the job id.
func (s *Scheduler) ScheduleCron(name, expr string, task Task) (string, error) {
	return s.schedule(name, gocron.CronJob(expr, false), task)
}

func (s *Scheduler) schedule(name string, def gocron.JobDefinition, task Task) (string, error) {
	if task == nil {
		return "", errors.New("task is required")
	}
	job, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(s.run, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create %s job: %w", name, err)
	}
	slog.Info("Scheduled job", logfields.Job(name), slog.String("job_id", job.ID().String()))
	return job.ID().String(), nil
}

// run is called by gocron for every tick.
func (s *Scheduler) run(name string, task Task) {
	ctx := s.ctx
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	slog.Debug("Running scheduled job", logfields.Job(name))
	task(ctx)
	slog.Debug("Scheduled job finished", logfields.Job(name), logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
