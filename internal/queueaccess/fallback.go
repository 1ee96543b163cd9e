package queueaccess

import (
	"fmt"
	"log/slog"

	"filesort/internal/config"
	"filesort/internal/ipc"
	"filesort/internal/logging"
	"filesort/internal/queue"
	"filesort/internal/session"
)

// Handle is an open Access and its cleanup.
type Handle struct {
	Access Access
	// Remote reports whether calls go to a running daemon.
	Remote bool
	close  func() error
}

// Close releases resources associated with the handle.
func (h Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// OpenWithFallback tries IPC-backed access first, then falls back to a local
// session over the queue database.
func OpenWithFallback(
	dial func() (*ipc.Client, error),
	openLocal func() (Handle, error),
) (Handle, error) {
	if dial != nil {
		if client, err := dial(); err == nil {
			return Handle{Access: client, Remote: true, close: client.Close}, nil
		}
	}
	if openLocal == nil {
		return Handle{}, fmt.Errorf("open queue store: no local opener configured")
	}
	return openLocal()
}

// OpenLocal opens the queue database and builds an in-process session that
// logs to logPath only.
func OpenLocal(cfg *config.Config, logPath string, opts ...session.Option) (Handle, error) {
	if cfg == nil {
		return Handle{}, fmt.Errorf("open queue store: configuration not available")
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return Handle{}, fmt.Errorf("open queue store: %w", err)
	}

	var logger *slog.Logger
	if logPath == "" {
		logger = logging.NewNop()
	} else if logger, err = logging.NewFileLogger(cfg, logPath); err != nil {
		store.Close()
		return Handle{}, fmt.Errorf("init logger: %w", err)
	}

	sess, err := session.New(cfg, store, logger, opts...)
	if err != nil {
		store.Close()
		return Handle{}, err
	}
	return Handle{Access: sess, close: store.Close}, nil
}
