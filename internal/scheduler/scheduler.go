package scheduler

import (
	"context"
	"time"

	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// Task is one scheduled unit of work. Errors are logged, not fatal: the next
// tick is the retry mechanism.
type Task func(ctx context.Context) error

// Scheduler drives the poll and report cycles on independent intervals.
// Overlap safety between ticks comes from the store's constraints, not from
// in-process locking.
type Scheduler struct {
	pollInterval   time.Duration
	reportInterval time.Duration
	poll           Task
	report         Task
}

// New creates a Scheduler
func New(pollInterval, reportInterval time.Duration, poll, report Task) *Scheduler {
	return &Scheduler{
		pollInterval:   pollInterval,
		reportInterval: reportInterval,
		poll:           poll,
		report:         report,
	}
}

// Run executes one poll+report cycle immediately, then ticks until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Info().
		Dur("pollInterval", s.pollInterval).
		Dur("reportInterval", s.reportInterval).
		Msg("Scheduler started")

	s.runTask(ctx, "poll", s.poll)
	s.runTask(ctx, "report", s.report)

	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()
	reportTicker := time.NewTicker(s.reportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Scheduler stopped")
			return ctx.Err()
		case <-pollTicker.C:
			s.runTask(ctx, "poll", s.poll)
		case <-reportTicker.C:
			s.runTask(ctx, "report", s.report)
		}
	}
}

func (s *Scheduler) runTask(ctx context.Context, name string, task Task) {
	if ctx.Err() != nil {
		return
	}
	if err := task(ctx); err != nil {
		// Conflicts with an overlapping invocation and feed outages resolve
		// themselves on a later tick and are not operator-actionable.
		if apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrTransport) {
			logger.Warn().Err(err).Str("task", name).Msg("Scheduled task failed, retrying next tick")
			return
		}
		logger.Error().Err(err).Str("task", name).Msg("Scheduled task failed")
	}
}
