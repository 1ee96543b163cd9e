package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Add appends paths to the queue in order. Paths already queued keep their
// original position. It returns the number of newly queued paths.
func (s *Store) Add(ctx context.Context, paths ...string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	added := 0
	stamp := formatTime(time.Now())
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		added = 0
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO queue_files (path, added_at) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, path := range paths {
			res, err := stmt.ExecContext(ctx, path, stamp)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				added += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("add queue files: %w", err)
	}
	return added, nil
}

// List returns queued files in insertion order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT id, path, added_at FROM queue_files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list queue files: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			addedRaw sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Path, &addedRaw); err != nil {
			return nil, fmt.Errorf("scan queue file: %w", err)
		}
		if added, err := parseTimeString(addedRaw.String); err == nil {
			entry.AddedAt = added
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Paths returns queued paths in insertion order.
func (s *Store) Paths(ctx context.Context) ([]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}
	return paths, nil
}

// Count returns the number of queued files.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM queue_files`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count queue files: %w", err)
	}
	return count, nil
}

// Clear removes every queued file and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_files`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// Remove deletes the given paths from the queue.
func (s *Store) Remove(ctx context.Context, paths ...string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	args := make([]any, len(paths))
	for i, path := range paths {
		args[i] = path
	}
	query := `DELETE FROM queue_files WHERE path IN (` + makePlaceholders(len(paths)) + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("remove queue files: %w", err)
	}
	return res.RowsAffected()
}
