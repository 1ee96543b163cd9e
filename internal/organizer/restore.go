package organizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"filesort/internal/config"
	"filesort/internal/fileutil"
	"filesort/internal/logging"
	"filesort/internal/queue"
	"filesort/internal/services"
)

// Restore reverts the most recent real organize run. mode is
// config.RestoreModeJournal or config.RestoreModeReset; empty uses the
// configured default.
func (o *Organizer) Restore(ctx context.Context, mode string) (*Report, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = o.cfg.Organize.RestoreMode
	}
	if mode != config.RestoreModeJournal && mode != config.RestoreModeReset {
		return nil, services.UserInput(component, "restore", "unknown restore mode "+mode)
	}

	record, err := o.store.Backup(ctx)
	if err != nil {
		if errors.Is(err, queue.ErrNoBackup) {
			return nil, services.State(component, "restore", "no backup available")
		}
		return nil, services.Wrap(services.ErrState, component, "restore", "read backup record", err)
	}
	if info, statErr := os.Stat(record.Dir); statErr != nil || !info.IsDir() {
		return nil, services.State(component, "restore", "no backup available")
	}

	o.setState(StateRestoring)
	defer o.setState(StateIdle)

	report := &Report{RunID: record.RunID, Root: record.Root, BackupDir: record.Dir}
	ctx = services.WithRunID(ctx, record.RunID)
	ctx = services.WithOperation(ctx, "restore")
	logger := logging.WithContext(ctx, o.logger)

	if mode == config.RestoreModeReset {
		o.restoreReset(logger, report)
	} else {
		entries, err := o.store.Journal(ctx, record.RunID)
		if err != nil {
			return nil, services.Wrap(services.ErrState, component, "restore", "read run journal", err)
		}
		o.restoreJournal(logger, report, entries)
	}

	if err := os.RemoveAll(record.Dir); err != nil {
		report.fail(record.Dir, "restore", err)
		logging.WarnWithContext(logger, "backup directory removal failed", "restore_cleanup_failed",
			logging.Path(record.Dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "backup directory remains on disk"),
		)
	}
	if err := o.store.ClearBackup(ctx); err != nil {
		return nil, services.Wrap(services.ErrState, component, "restore", "clear backup record", err)
	}

	logger.Info("restore finished",
		logging.String("mode", mode),
		logging.Count(len(report.Lines)),
		logging.Int("failures", len(report.Failures)),
		logging.EventType("restore_finished"),
	)
	return report, nil
}

// restoreJournal inverts the recorded moves. A moved file is deleted and its
// backup copy put back only when that copy is usable; otherwise the moved
// file itself goes back to its original path.
func (o *Organizer) restoreJournal(logger *slog.Logger, report *Report, entries []queue.JournalEntry) {
	backedUp := make(map[string]string)
	claims := make(map[string]int)
	for _, entry := range entries {
		if entry.Kind == queue.JournalBackup {
			backedUp[entry.Source] = entry.Dest
			claims[entry.Dest]++
		}
	}

	var touched []string
	for _, entry := range slices.Backward(entries) {
		if entry.Kind != queue.JournalMove {
			continue
		}
		touched = append(touched, filepath.Dir(entry.Dest))
		if backup, ok := backedUp[entry.Source]; ok {
			if claims[backup] == 1 && backupMatches(backup, entry.Dest) {
				if err := os.Remove(entry.Dest); err != nil && !errors.Is(err, os.ErrNotExist) {
					o.restoreFailed(logger, report, entry.Dest, err)
				}
				continue
			}
			logger.Info("backup copy unusable; moving organized file back",
				logging.Path(entry.Dest),
				logging.String("backup", backup),
				logging.EventType("restore_backup_unusable"),
			)
			delete(backedUp, entry.Source)
		}
		if err := os.MkdirAll(filepath.Dir(entry.Source), 0o755); err != nil {
			o.restoreFailed(logger, report, entry.Source, err)
			continue
		}
		if err := fileutil.MoveFile(entry.Dest, entry.Source); err != nil {
			o.restoreFailed(logger, report, entry.Dest, err)
			continue
		}
		report.addLine("Restored %s", filepath.Base(entry.Source))
	}

	for _, entry := range entries {
		if entry.Kind != queue.JournalBackup {
			continue
		}
		if backedUp[entry.Source] != entry.Dest || fileutil.IsRegularFile(entry.Source) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(entry.Source), 0o755); err != nil {
			o.restoreFailed(logger, report, entry.Source, err)
			continue
		}
		if err := fileutil.MoveFile(entry.Dest, entry.Source); err != nil {
			o.restoreFailed(logger, report, entry.Dest, err)
			continue
		}
		report.addLine("Restored %s", filepath.Base(entry.Source))
	}

	for _, dir := range touched {
		pruneEmptyDirs(dir, report.Root)
	}
}

// backupMatches reports whether backup can stand in for the organized file:
// it is a regular file and, when organized still exists, of the same size.
func backupMatches(backup, organized string) bool {
	backupInfo, err := os.Stat(backup)
	if err != nil || !backupInfo.Mode().IsRegular() {
		return false
	}
	info, err := os.Stat(organized)
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return backupInfo.Size() == info.Size()
}

// restoreReset moves every backup file back to the root and deletes every
// category directory under it, including files the last run did not move.
func (o *Organizer) restoreReset(logger *slog.Logger, report *Report) {
	entries, err := os.ReadDir(report.BackupDir)
	if err != nil {
		o.restoreFailed(logger, report, report.BackupDir, err)
		return
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(report.BackupDir, entry.Name())
		dst := filepath.Join(report.Root, entry.Name())
		if err := fileutil.MoveFile(src, dst); err != nil {
			o.restoreFailed(logger, report, src, err)
			continue
		}
		report.addLine("Restored %s", entry.Name())
	}

	categories := append(o.classifier.Categories(), o.classifier.Others())
	for _, name := range categories {
		dir := filepath.Join(report.Root, name)
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			o.restoreFailed(logger, report, dir, err)
			continue
		}
		logger.Debug("category directory removed",
			logging.Path(dir),
			logging.EventType("restore_category_removed"),
		)
	}
}

func (o *Organizer) restoreFailed(logger *slog.Logger, report *Report, path string, err error) {
	report.fail(path, "restore", err)
	logging.WarnWithContext(logger, "restore step failed; continuing", "restore_file_failed",
		logging.Path(path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect the path and move the file manually"),
		logging.String(logging.FieldImpact, "file may not be back in its original location"),
	)
}

// pruneEmptyDirs removes dir and its empty parents up to, but not including, root.
func pruneEmptyDirs(dir, root string) {
	root = filepath.Clean(root)
	for dir = filepath.Clean(dir); dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
