package queue

import (
	"context"
	"path/filepath"
	"testing"

	"filesort/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBeginRunOnSecondPooledConnection(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, Run{ID: "run-1", Root: "/inbox"}, "/inbox/_backup"); err != nil {
		t.Fatalf("first BeginRun: %v", err)
	}
	if err := store.AppendJournal(ctx, JournalEntry{RunID: "run-1", Kind: JournalMove, Source: "/inbox/a.txt", Dest: "/inbox/Documents/a.txt"}); err != nil {
		t.Fatalf("AppendJournal: %v", err)
	}

	held, err := store.db.Conn(ctx)
	if err != nil {
		t.Fatalf("hold connection: %v", err)
	}
	defer held.Close()

	var foreignKeys int
	if err := held.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("expected foreign keys on every connection, got %d", foreignKeys)
	}

	if err := store.BeginRun(ctx, Run{ID: "run-2", Root: "/inbox"}, "/inbox/_backup"); err != nil {
		t.Fatalf("second BeginRun while a connection is held: %v", err)
	}
	record, err := store.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if record.RunID != "run-2" {
		t.Fatalf("expected backup record for run-2, got %q", record.RunID)
	}
	var stale int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal WHERE run_id = ?", "run-1").Scan(&stale); err != nil {
		t.Fatalf("count journal: %v", err)
	}
	if stale != 0 {
		t.Fatalf("expected journal of run-1 to be dropped, found %d entries", stale)
	}
}
