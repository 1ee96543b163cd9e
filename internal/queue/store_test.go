package queue_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"filesort/internal/queue"
	"filesort/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := os.Stat(cfg.QueueDBPath()); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if health.SchemaVersion != 1 || !health.IntegrityCheck {
		t.Fatalf("unexpected health %+v", health)
	}
	if health.QueuedFiles != 0 || health.HasBackup {
		t.Fatalf("expected empty database, got %+v", health)
	}
}

func TestReopenKeepsQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.Add(context.Background(), "/a", "/b"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	paths, err := reopened.Paths(context.Background())
	if err != nil {
		t.Fatalf("Paths failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/a" || paths[1] != "/b" {
		t.Fatalf("unexpected paths after reopen: %v", paths)
	}
}

func TestAddDeduplicatesAndPreservesOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	added, err := store.Add(ctx, "/c", "/a", "/c")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 new entries, got %d", added)
	}
	added, err = store.Add(ctx, "/b", "/a")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 new entry, got %d", added)
	}

	paths, err := store.Paths(ctx)
	if err != nil {
		t.Fatalf("Paths failed: %v", err)
	}
	want := []string{"/c", "/a", "/b"}
	if len(paths) != len(want) {
		t.Fatalf("unexpected paths %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.MustEnqueue(t, store, "/a", "/b", "/c")

	removed, err := store.Remove(ctx, "/b", "/missing")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	count, err := store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected count 2, got %d (%v)", count, err)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", cleared)
	}
	entries, err := store.List(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty queue, got %v (%v)", entries, err)
	}
}

func TestBackupRecordLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Backup(ctx); !errors.Is(err, queue.ErrNoBackup) {
		t.Fatalf("expected ErrNoBackup, got %v", err)
	}

	if err := store.BeginRun(ctx, queue.Run{ID: "run-1", Root: "/src"}, "/src/_backup"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.AppendJournal(ctx, queue.JournalEntry{RunID: "run-1", Kind: queue.JournalBackup, Source: "/src/a.jpg", Dest: "/src/_backup/a.jpg"}); err != nil {
		t.Fatalf("AppendJournal failed: %v", err)
	}
	if err := store.AppendJournal(ctx, queue.JournalEntry{RunID: "run-1", Kind: queue.JournalMove, Source: "/src/a.jpg", Dest: "/src/Images/x.jpg"}); err != nil {
		t.Fatalf("AppendJournal failed: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", 1, 0); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	record, err := store.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if record.RunID != "run-1" || record.Dir != "/src/_backup" || record.Root != "/src" {
		t.Fatalf("unexpected record %+v", record)
	}
	run, err := store.LastRun(ctx)
	if err != nil || run == nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if run.Moved != 1 || run.FinishedAt == nil || run.Trigger != queue.TriggerManual {
		t.Fatalf("unexpected run %+v", run)
	}

	if err := store.BeginRun(ctx, queue.Run{ID: "run-2", Root: "/other", Trigger: queue.TriggerScheduled}, "/other/_backup"); err != nil {
		t.Fatalf("second BeginRun failed: %v", err)
	}
	old, err := store.Journal(ctx, "run-1")
	if err != nil {
		t.Fatalf("Journal failed: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("expected previous journal to be replaced, got %d entries", len(old))
	}
	record, err = store.Backup(ctx)
	if err != nil || record.RunID != "run-2" {
		t.Fatalf("expected record for run-2, got %+v (%v)", record, err)
	}

	if err := store.ClearBackup(ctx); err != nil {
		t.Fatalf("ClearBackup failed: %v", err)
	}
	if _, err := store.Backup(ctx); !errors.Is(err, queue.ErrNoBackup) {
		t.Fatalf("expected ErrNoBackup after clear, got %v", err)
	}
	if run, err := store.LastRun(ctx); err != nil || run != nil {
		t.Fatalf("expected no runs after clear, got %+v (%v)", run, err)
	}
}

func TestJournalOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.BeginRun(ctx, queue.Run{ID: "run-1", Root: "/src"}, "/src/_backup"); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		if err := store.AppendJournal(ctx, queue.JournalEntry{RunID: "run-1", Kind: queue.JournalMove, Source: "/src/" + name, Dest: "/dst/" + name}); err != nil {
			t.Fatalf("AppendJournal failed: %v", err)
		}
	}
	entries, err := store.Journal(ctx, "run-1")
	if err != nil {
		t.Fatalf("Journal failed: %v", err)
	}
	if len(entries) != 3 || entries[0].Source != "/src/a" || entries[2].Dest != "/dst/c" {
		t.Fatalf("unexpected journal %+v", entries)
	}
	if entries[1].Kind != queue.JournalMove {
		t.Fatalf("unexpected kind %q", entries[1].Kind)
	}
}
