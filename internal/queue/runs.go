package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoBackup reports that no backup record exists.
var ErrNoBackup = errors.New("no backup record")

// BeginRun records a new real organize run and makes its backup directory
// the active backup record. Any earlier run and its journal are discarded.
func (s *Store) BeginRun(ctx context.Context, run Run, backupDir string) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("begin run: id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Trigger == "" {
		run.Trigger = TriggerManual
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM backup_record`, `DELETE FROM journal`, `DELETE FROM runs`} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, root, started_at, origin) VALUES (?, ?, ?, ?)`,
			run.ID, run.Root, formatTime(run.StartedAt), run.Trigger,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO backup_record (id, run_id, root, backup_dir, created_at) VALUES (1, ?, ?, ?, ?)`,
			run.ID, run.Root, backupDir, formatTime(run.StartedAt),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, moved, failed int) error {
	now := time.Now()
	_, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, moved = ?, failed = ? WHERE id = ?`,
		nullableTime(&now), moved, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LastRun returns the most recent real run, or nil when none is recorded.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT id, root, origin, started_at, finished_at, moved, failed FROM runs ORDER BY started_at DESC LIMIT 1`)
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Root, &run.Trigger, &startedRaw, &finishedRaw, &run.Moved, &run.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last run: %w", err)
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

// Backup returns the active backup record or ErrNoBackup.
func (s *Store) Backup(ctx context.Context) (*BackupRecord, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT run_id, root, backup_dir, created_at FROM backup_record WHERE id = 1`)
	var (
		record     BackupRecord
		createdRaw string
	)
	if err := row.Scan(&record.RunID, &record.Root, &record.Dir, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoBackup
		}
		return nil, fmt.Errorf("read backup record: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	return &record, nil
}

// ClearBackup drops the backup record together with its run and journal.
func (s *Store) ClearBackup(ctx context.Context) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{`DELETE FROM backup_record`, `DELETE FROM journal`, `DELETE FROM runs`} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear backup record: %w", err)
	}
	return nil
}

// AppendJournal records a filesystem action for a run.
func (s *Store) AppendJournal(ctx context.Context, entry JournalEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO journal (run_id, kind, source, dest, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.RunID, string(entry.Kind), entry.Source, entry.Dest, formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// Journal returns a run's entries in the order they were recorded.
func (s *Store) Journal(ctx context.Context, runID string) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, kind, source, dest, created_at FROM journal WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			entry      JournalEntry
			kind       string
			createdRaw string
		)
		if err := rows.Scan(&entry.ID, &entry.RunID, &kind, &entry.Source, &entry.Dest, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		entry.Kind = JournalKind(kind)
		if created, err := parseTimeString(createdRaw); err == nil {
			entry.CreatedAt = created
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CheckHealth returns diagnostic information about the queue database.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	ctx = ensureContext(ctx)
	health := Health{DBPath: s.path}
	if err := s.Ping(ctx); err != nil {
		return health, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil {
		return health, fmt.Errorf("read schema version: %w", err)
	}
	count, err := s.Count(ctx)
	if err != nil {
		return health, err
	}
	health.QueuedFiles = count
	if _, err := s.Backup(ctx); err == nil {
		health.HasBackup = true
	} else if !errors.Is(err, ErrNoBackup) {
		return health, err
	}
	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")
	return health, nil
}
