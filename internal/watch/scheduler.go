package watch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler fires the periodic jobs of a watch loop, such as the full
// rescan of the source directory.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	jobs   map[string]cron.EntryID
}

// NewScheduler creates a scheduler whose cron diagnostics go to logger.
// A job still running when its next tick comes is skipped.
func NewScheduler(logger *zap.Logger) *Scheduler {
	clog := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithLogger(clog), cron.WithChain(
			cron.SkipIfStillRunning(clog),
			cron.Recover(clog),
		)),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once running
// jobs have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// AddJob registers job under name. Jobs must be added before Start.
// Expressions accept an optional seconds field and descriptors such as
// "@every 5s".
func (s *Scheduler) AddJob(name, expr string, job func()) error {
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %s already registered", name)
	}
	log := s.logger.With(zap.String("job", name))
	id, err := s.cron.AddFunc(expr, func() {
		log.Debug("tick")
		job()
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", expr, name, err)
	}
	s.jobs[name] = id
	log.Debug("scheduled", zap.String("expr", expr))
	return nil
}

// cronLogger routes cron's own messages through zap. Its info chatter is
// demoted to debug.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
