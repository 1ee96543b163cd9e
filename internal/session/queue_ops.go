package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"filesort/internal/api"
	"filesort/internal/logging"
	"filesort/internal/queue"
	"filesort/internal/services"
)

// AddFiles queues regular files. Paths are made absolute; directories and
// missing paths are rejected individually and reported in Skipped.
func (s *Session) AddFiles(ctx context.Context, paths []string) (*api.Result, error) {
	const op = "add"
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = withOperation(ctx, op)

	if len(paths) == 0 {
		return s.fail(op, services.UserInput(component, op, "no files selected"))
	}

	var (
		accepted []string
		rejected []api.FileSkip
	)
	for _, raw := range paths {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		abs, err := filepath.Abs(raw)
		if err != nil {
			rejected = append(rejected, api.FileSkip{Path: raw, Reason: err.Error()})
			continue
		}
		info, err := os.Stat(abs)
		switch {
		case err != nil && errors.Is(err, os.ErrNotExist):
			rejected = append(rejected, api.FileSkip{Path: abs, Reason: "does not exist"})
		case err != nil:
			rejected = append(rejected, api.FileSkip{Path: abs, Reason: err.Error()})
		case info.IsDir():
			rejected = append(rejected, api.FileSkip{Path: abs, Reason: "is a directory"})
		case !info.Mode().IsRegular():
			rejected = append(rejected, api.FileSkip{Path: abs, Reason: "not a regular file"})
		default:
			accepted = append(accepted, abs)
		}
	}

	if len(accepted) == 0 {
		res, err := s.fail(op, services.UserInput(component, op, "no valid files selected"))
		res.Skipped = rejected
		return res, err
	}

	added, err := s.store.Add(ctx, accepted...)
	if err != nil {
		return s.fail(op, services.Wrap(services.ErrState, component, op, "update queue", err))
	}
	logging.WithContext(ctx, s.logger).Info("files queued",
		logging.Int("added", added),
		logging.Int("rejected", len(rejected)),
		logging.EventType("queue_files_added"),
	)

	res := api.NewResult(op)
	res.Total = added
	res.Skipped = rejected
	res.Message = s.queueStatus(ctx)
	return res, nil
}

// ClearQueue removes every queued file.
func (s *Session) ClearQueue(ctx context.Context) (*api.Result, error) {
	const op = "clear"
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Clear(ctx)
	if err != nil {
		return s.fail(op, services.Wrap(services.ErrState, component, op, "clear queue", err))
	}
	res := api.NewResult(op)
	res.Total = int(removed)
	res.Message = queueStatusLine(0)
	return res, nil
}

// Queue lists queued files in insertion order.
func (s *Session) Queue(ctx context.Context) (*api.Result, error) {
	const op = "queue"
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.store.List(ctx)
	if err != nil {
		return s.fail(op, services.Wrap(services.ErrState, component, op, "list queue", err))
	}
	res := api.NewResult(op)
	res.Queue = api.FromEntries(entries)
	res.Total = len(entries)
	res.Message = queueStatusLine(len(entries))
	return res, nil
}

// Status reports queue size, the last run and the restorable backup.
func (s *Session) Status(ctx context.Context) (*api.Result, error) {
	const op = "status"
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.Count(ctx)
	if err != nil {
		return s.fail(op, services.Wrap(services.ErrState, component, op, "count queue", err))
	}
	run, err := s.store.LastRun(ctx)
	if err != nil {
		return s.fail(op, services.Wrap(services.ErrState, component, op, "read last run", err))
	}
	backup, err := s.store.Backup(ctx)
	if err != nil && !errors.Is(err, queue.ErrNoBackup) {
		return s.fail(op, services.Wrap(services.ErrState, component, op, "read backup record", err))
	}

	res := api.NewResult(op)
	res.Total = count
	res.Message = queueStatusLine(count)
	res.Status = &api.SessionStatus{
		QueuedFiles: count,
		QueueDBPath: s.store.Path(),
		LastRun:     api.FromRun(run),
		Backup:      api.FromBackup(backup),
	}
	return res, nil
}
