package testsupport

import (
	"context"
	"testing"

	"filesort/internal/config"
	"filesort/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustEnqueue adds paths to the store's queue.
func MustEnqueue(t testing.TB, store *queue.Store, paths ...string) {
	t.Helper()

	if _, err := store.Add(context.Background(), paths...); err != nil {
		t.Fatalf("store.Add: %v", err)
	}
}
