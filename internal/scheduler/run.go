package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"filesort/internal/logging"
	"filesort/internal/notifications"
	"filesort/internal/services"
)

const idleMessage = "Scheduler: No files in queue."

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
			s.mu.Lock()
			if s.running {
				s.nextRun = s.now().Add(s.interval)
			}
			s.mu.Unlock()
		}
	}
}

// Tick performs one scheduled pass synchronously.
func (s *Scheduler) Tick(ctx context.Context) {
	started := s.now()
	logger := logging.WithContext(ctx, s.logger)

	pending, err := s.runner.Pending(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "scheduler could not read queue", "scheduler_queue_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check queue database access"),
			logging.String(logging.FieldImpact, "tick skipped; retried on next interval"),
		)
		s.record(started, "", err)
		return
	}
	if pending == 0 {
		logger.Info(idleMessage, logging.EventType("scheduler_idle"))
		s.record(started, idleMessage, nil)
		s.notify(ctx, logger, notifications.EventSchedulerIdle, nil)
		return
	}

	logger.Info("scheduled organize starting",
		logging.Count(pending),
		logging.EventType("scheduler_tick"),
	)
	summary, err := s.runner.RunScheduled(ctx)
	elapsed := s.now().Sub(started)
	switch {
	case err == nil:
		logger.Info("scheduled organize finished",
			logging.String("summary", summary),
			logging.Duration("duration", elapsed),
			logging.EventType("scheduler_run_completed"),
		)
		s.record(started, summary, nil)
		s.notify(ctx, logger, notifications.EventScheduledRunCompleted, notifications.Payload{
			"summary":  summary,
			"duration": elapsed,
		})
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, services.ErrUserInput):
		// Queue drained between the count and the run.
		logger.Info(idleMessage, logging.EventType("scheduler_idle"))
		s.record(started, idleMessage, nil)
		s.notify(ctx, logger, notifications.EventSchedulerIdle, nil)
	default:
		logging.ErrorWithContext(logger, "scheduled organize failed", "scheduler_run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "run filesort restore if files were left half organized"),
		)
		s.record(started, summary, err)
		s.notify(ctx, logger, notifications.EventScheduledRunFailed, notifications.Payload{
			"summary": summary,
			"error":   services.Message(err),
			"kind":    services.Kind(err),
		})
	}
}

func (s *Scheduler) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logger, "notification not delivered", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check [notifications] ntfy_topic and network access"),
			logging.String(logging.FieldImpact, "run result only available in logs and status"),
		)
	}
}

func (s *Scheduler) record(at time.Time, summary string, err error) {
	s.mu.Lock()
	s.lastRun = at
	s.lastResult = summary
	s.lastErr = err
	s.mu.Unlock()
}
