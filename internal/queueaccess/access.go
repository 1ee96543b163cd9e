package queueaccess

import (
	"context"

	"filesort/internal/api"
	"filesort/internal/ipc"
	"filesort/internal/session"
)

// Access provides session operations regardless of IPC or direct store backing.
type Access interface {
	AddFiles(ctx context.Context, paths []string) (*api.Result, error)
	ClearQueue(ctx context.Context) (*api.Result, error)
	Queue(ctx context.Context) (*api.Result, error)
	Status(ctx context.Context) (*api.Result, error)
	Organize(ctx context.Context) (*api.Result, error)
	Preview(ctx context.Context) (*api.Result, error)
	Restore(ctx context.Context, mode string) (*api.Result, error)
	FindDuplicates(ctx context.Context) (*api.Result, error)
	Export(ctx context.Context, dest string) (*api.Result, error)
}

var (
	_ Access = (*session.Session)(nil)
	_ Access = (*ipc.Client)(nil)
)
