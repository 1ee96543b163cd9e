package session

import (
	"context"
	"fmt"

	"filesort/internal/api"
	"filesort/internal/logging"
	"filesort/internal/organizer"
	"filesort/internal/queue"
	"filesort/internal/services"
)

// Organize backs up and organizes every queued file.
func (s *Session) Organize(ctx context.Context) (*api.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.organize(ctx, queue.TriggerManual)
}

// Preview reports where each queued file would go without touching disk.
func (s *Session) Preview(ctx context.Context) (*api.Result, error) {
	const op = "preview"
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = withOperation(ctx, op)

	paths, err := s.queuedPaths(ctx, op)
	if err != nil {
		return s.fail(op, err)
	}
	report, err := s.organizer.Preview(ctx, paths)
	if err != nil {
		return s.fail(op, err)
	}
	res := api.NewResult(op)
	api.ApplyReport(res, report, s.cfg.Organize.PreviewLimit)
	res.Message = fmt.Sprintf("%d file(s) would be organized", len(report.Actions))
	return res, nil
}

// Restore reverts the last real organize run. An empty mode uses the
// configured default.
func (s *Session) Restore(ctx context.Context, mode string) (*api.Result, error) {
	const op = "restore"
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = withOperation(ctx, op)

	report, err := s.organizer.Restore(ctx, mode)
	if err != nil {
		return s.fail(op, err)
	}
	res := api.NewResult(op)
	api.ApplyReport(res, report, s.cfg.Organize.PreviewLimit)
	res.Total = len(report.Lines)
	if res.Total == 0 {
		res.Lines = nil
	}
	res.Message = fmt.Sprintf("Restored %d file(s)", res.Total)
	if len(report.Failures) > 0 {
		return s.partial(op, res, len(report.Failures))
	}
	return res, nil
}

// Pending reports the queue size for the scheduler.
func (s *Session) Pending(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Count(ctx)
}

// RunScheduled performs an organize run on behalf of the scheduler.
func (s *Session) RunScheduled(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.organize(ctx, queue.TriggerScheduled)
	if res == nil {
		return "", err
	}
	return res.Message, err
}

func (s *Session) organize(ctx context.Context, trigger string) (*api.Result, error) {
	const op = "organize"
	ctx = withOperation(ctx, op)

	paths, err := s.queuedPaths(ctx, op)
	if err != nil {
		return s.fail(op, err)
	}
	report, err := s.organizer.Organize(ctx, paths, trigger)
	if err != nil {
		return s.fail(op, err)
	}

	moved := report.Moved()
	if s.cfg.Queue.ClearAfterOrganize && len(moved) > 0 {
		if _, err := s.store.Remove(ctx, moved...); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to drop organized files from queue", "queue_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "organized files remain queued"),
			)
		}
	}

	res := api.NewResult(op)
	api.ApplyReport(res, report, s.cfg.Organize.PreviewLimit)
	res.Message = organizeMessage(report, s.queueStatus(ctx))
	if len(report.Failures) > 0 {
		return s.partial(op, res, len(report.Failures))
	}
	return res, nil
}

func organizeMessage(report *organizer.Report, queueLine string) string {
	msg := fmt.Sprintf("Organized %d of %d file(s)", len(report.Moved()), len(report.Actions))
	if queueLine != "" {
		msg += ". " + queueLine
	}
	return msg
}

// partial marks a result whose batch finished with per-file failures.
func (s *Session) partial(op string, res *api.Result, failures int) (*api.Result, error) {
	err := services.Wrap(services.ErrFileIO, component, op, fmt.Sprintf("%d file(s) failed", failures), nil)
	res.OK = false
	res.Kind = services.KindFileIO
	return res, err
}
