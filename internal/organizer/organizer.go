package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"filesort/internal/classify"
	"filesort/internal/config"
	"filesort/internal/fileutil"
	"filesort/internal/logging"
	"filesort/internal/naming"
	"filesort/internal/preflight"
	"filesort/internal/queue"
	"filesort/internal/services"
)

const component = "organizer"

// Organizer runs organize, preview and restore operations. Callers serialize
// runs; State may be read concurrently.
type Organizer struct {
	cfg        *config.Config
	store      *queue.Store
	classifier *classify.Classifier
	namer      *naming.Namer
	logger     *slog.Logger
	state      atomic.Int32
}

// New constructs an organizer from its collaborators.
func New(cfg *config.Config, store *queue.Store, classifier *classify.Classifier, namer *naming.Namer, logger *slog.Logger) *Organizer {
	if classifier == nil {
		classifier = classify.NewFromConfig(cfg)
	}
	if namer == nil {
		namer = naming.New(cfg.Naming, nil)
	}
	return &Organizer{
		cfg:        cfg,
		store:      store,
		classifier: classifier,
		namer:      namer,
		logger:     logging.NewComponentLogger(logger, component),
	}
}

// State returns the current run state.
func (o *Organizer) State() State {
	return State(o.state.Load())
}

func (o *Organizer) setState(state State) {
	o.state.Store(int32(state))
}

// Preview computes the organize plan for paths without touching the filesystem.
func (o *Organizer) Preview(ctx context.Context, paths []string) (*Report, error) {
	return o.run(ctx, paths, true, "")
}

// Organize backs up, classifies, renames and moves paths. trigger is recorded
// on the run (queue.TriggerManual or queue.TriggerScheduled).
func (o *Organizer) Organize(ctx context.Context, paths []string, trigger string) (*Report, error) {
	return o.run(ctx, paths, false, trigger)
}

type planned struct {
	source   string
	category string
	destDir  string
}

func (o *Organizer) run(ctx context.Context, paths []string, preview bool, trigger string) (*Report, error) {
	operation := "organize"
	if preview {
		operation = "preview"
	}
	if len(paths) == 0 {
		return nil, services.UserInput(component, operation, "no files selected")
	}
	defer o.setState(StateIdle)

	report := &Report{
		RunID:   uuid.NewString(),
		Preview: preview,
		Root:    filepath.Dir(paths[0]),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	ctx = services.WithOperation(ctx, operation)
	logger := logging.WithContext(ctx, o.logger)

	present := make([]string, 0, len(paths))
	var totalBytes uint64
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			report.skip(path, "file no longer exists")
			logger.Info("queued file missing; skipped",
				logging.Path(path),
				logging.EventType("file_skipped"),
			)
			continue
		}
		present = append(present, path)
		totalBytes += uint64(info.Size())
	}
	if len(present) == 0 {
		logger.Info("no actionable files", logging.Count(len(paths)))
		return report, nil
	}

	if !preview {
		if err := o.backup(ctx, logger, report, present, totalBytes, trigger); err != nil {
			return nil, err
		}
	}

	o.setState(StateClassifying)
	plan := make([]planned, 0, len(present))
	for _, path := range present {
		info, err := os.Stat(path)
		if err != nil {
			report.skip(path, "file no longer exists")
			continue
		}
		category := o.classifier.Classify(filepath.Ext(path))
		plan = append(plan, planned{
			source:   path,
			category: category,
			destDir:  filepath.Join(report.Root, category, o.namer.DateBucket(info.ModTime())),
		})
	}

	batch := o.namer.Batch()
	if preview {
		o.setState(StatePreviewing)
		for _, item := range plan {
			dest := filepath.Join(item.destDir, batch.NewName(item.source))
			report.Actions = append(report.Actions, Action{Source: item.source, Dest: dest, Category: item.category})
			report.addLine("[PREVIEW] %s → %s", filepath.Base(item.source), dest)
		}
	} else {
		o.setState(StateMoving)
		for _, item := range plan {
			dest := filepath.Join(item.destDir, batch.NewName(item.source))
			action := Action{Source: item.source, Dest: dest, Category: item.category}
			if err := o.move(item.source, dest); err != nil {
				report.fail(item.source, "move", err)
				logging.WarnWithContext(logger, "move failed; file left in place", "file_move_failed",
					logging.Path(item.source),
					logging.Destination(dest),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check permissions on the source directory"),
					logging.String(logging.FieldImpact, "file was not organized"),
				)
			} else {
				action.Done = true
				if err := o.store.AppendJournal(ctx, queue.JournalEntry{
					RunID:  report.RunID,
					Kind:   queue.JournalMove,
					Source: item.source,
					Dest:   dest,
				}); err != nil {
					logger.Warn("failed to journal move", logging.Path(item.source), logging.Error(err))
				}
				report.addLine("Moved + Renamed %s → %s", filepath.Base(item.source), dest)
				logger.Debug("file moved",
					logging.Path(item.source),
					logging.Destination(dest),
					logging.Category(item.category),
					logging.EventType("file_moved"),
				)
			}
			report.Actions = append(report.Actions, action)
		}
	}

	o.setState(StateReporting)
	if !preview {
		moved := len(report.Moved())
		if err := o.store.FinishRun(ctx, report.RunID, moved, len(report.Failures)); err != nil {
			logger.Warn("failed to record run totals", logging.Error(err))
		}
	}
	logger.Info("organize run finished",
		logging.Count(len(report.Actions)),
		logging.Int("failures", len(report.Failures)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Bool("preview", preview),
		logging.EventType("organize_finished"),
	)
	return report, nil
}

func (o *Organizer) backup(ctx context.Context, logger *slog.Logger, report *Report, present []string, totalBytes uint64, trigger string) error {
	o.setState(StateBackingUp)
	report.BackupDir = filepath.Join(report.Root, o.cfg.Organize.BackupDirName)

	headroom := uint64(o.cfg.Organize.MinFreeMB) * 1024 * 1024
	if check := preflight.CheckFreeSpace("backup", report.Root, totalBytes, headroom); !check.Passed {
		return services.Wrap(services.ErrState, component, "backup", "insufficient space for backup: "+check.Detail, nil)
	}

	// The record must never point at a backup that was already removed.
	if err := o.store.BeginRun(ctx, queue.Run{
		ID:        report.RunID,
		Root:      report.Root,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}, report.BackupDir); err != nil {
		return services.Wrap(services.ErrState, component, "backup", "record backup", err)
	}
	if err := os.RemoveAll(report.BackupDir); err != nil {
		return services.Wrap(services.ErrFileIO, component, "backup", "replace previous backup", err)
	}
	if err := os.MkdirAll(report.BackupDir, 0o755); err != nil {
		return services.Wrap(services.ErrFileIO, component, "backup", "create backup directory", err)
	}

	for _, path := range present {
		dest := filepath.Join(report.BackupDir, filepath.Base(path))
		if err := fileutil.CopyFileVerified(path, dest); err != nil {
			report.fail(path, "backup", err)
			logging.WarnWithContext(logger, "backup copy failed; continuing without it", "backup_copy_failed",
				logging.Path(path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions in the backup directory"),
				logging.String(logging.FieldImpact, "restore cannot recover this file from backup"),
			)
			continue
		}
		if err := o.store.AppendJournal(ctx, queue.JournalEntry{
			RunID:  report.RunID,
			Kind:   queue.JournalBackup,
			Source: path,
			Dest:   dest,
		}); err != nil {
			logger.Warn("failed to journal backup copy", logging.Path(path), logging.Error(err))
		}
	}
	logger.Info("backup written",
		logging.Destination(report.BackupDir),
		logging.Count(len(present)),
		logging.EventType("backup_written"),
	)
	return nil
}

func (o *Organizer) move(source, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	return fileutil.MoveFile(source, dest)
}
