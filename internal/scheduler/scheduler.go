// Package scheduler runs pipeline stages on cron schedules in serve mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"github.com/tsethwilliams/isitsafetovisit/internal/config"
	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
)

// JobFunc is one scheduled unit of work. The context carries a fresh run id.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a cron runner. A job that is still running when its next
// tick arrives skips that tick.
type Scheduler struct {
	cron   *cron.Cron
	clock  clockwork.Clock
	logger *slog.Logger
	ctx    context.Context
	jobs   int
}

// New creates a Scheduler evaluating schedules in UTC. clock times job runs.
func New(clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		clock:  clock,
		logger: logger,
		ctx:    context.Background(),
	}
}

// Add registers fn under a standard five-field cron spec (descriptors such as
// "@hourly" are accepted too). A spec of config.ScheduleOff registers nothing
// and reports false.
func (s *Scheduler) Add(name, spec string, fn JobFunc) (bool, error) {
	if spec == config.ScheduleOff {
		s.logger.Info("job disabled", "job", name)
		return false, nil
	}
	_, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return false, fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.jobs++
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return true, nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int { return s.jobs }

// Start begins firing jobs in the background. Jobs run with a context derived
// from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
}

// Stop stops new ticks and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

func (s *Scheduler) run(name string, fn JobFunc) {
	id := observability.NewRunID()
	ctx := observability.WithRunID(s.ctx, id)
	log := s.logger.With("job", name, "run_id", id)

	start := s.clock.Now()
	log.Info("job started")
	if err := fn(ctx); err != nil {
		log.Error("job failed", "error", err, "duration", s.clock.Since(start).Round(time.Millisecond))
		return
	}
	log.Info("job complete", "duration", s.clock.Since(start).Round(time.Millisecond))
}

// cronLogger routes cron's internal logging through slog. Cron's info output
// is per-tick chatter, so it goes to debug.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
