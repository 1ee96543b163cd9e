package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"filesort/internal/api"
	"filesort/internal/archive"
	"filesort/internal/classify"
	"filesort/internal/config"
	"filesort/internal/dupes"
	"filesort/internal/logging"
	"filesort/internal/naming"
	"filesort/internal/organizer"
	"filesort/internal/queue"
	"filesort/internal/services"
)

const component = "session"

// Session serializes user operations over the shared queue store.
type Session struct {
	cfg       *config.Config
	store     *queue.Store
	organizer *organizer.Organizer
	finder    *dupes.Finder
	exporter  *archive.Exporter
	logger    *slog.Logger

	mu sync.Mutex
}

type options struct {
	now      func() time.Time
	uploader archive.Uploader
}

// Option customizes a Session.
type Option func(*options)

// WithClock fixes the clock used for new file names.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithUploader overrides the uploader for s3:// exports.
func WithUploader(uploader archive.Uploader) Option {
	return func(o *options) {
		o.uploader = uploader
	}
}

// New builds a session around an open store.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil || store == nil {
		return nil, fmt.Errorf("session requires config and store")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	finder, err := dupes.NewFinder(cfg.Dupes.CacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("duplicate finder: %w", err)
	}
	var exportOpts []archive.Option
	if o.uploader != nil {
		exportOpts = append(exportOpts, archive.WithUploader(o.uploader))
	}

	return &Session{
		cfg:   cfg,
		store: store,
		organizer: organizer.New(cfg, store,
			classify.NewFromConfig(cfg),
			naming.New(cfg.Naming, o.now),
			logger,
		),
		finder:   finder,
		exporter: archive.NewExporter(cfg.Export.S3, logger, exportOpts...),
		logger:   logging.NewComponentLogger(logger, component),
	}, nil
}

// State reports the organizer state machine position.
func (s *Session) State() organizer.State {
	return s.organizer.State()
}

func (s *Session) fail(operation string, err error) (*api.Result, error) {
	return api.Failed(operation, err), err
}

func (s *Session) queuedPaths(ctx context.Context, operation string) ([]string, error) {
	paths, err := s.store.Paths(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrState, component, operation, "read queue", err)
	}
	return paths, nil
}

func (s *Session) queueStatus(ctx context.Context) string {
	count, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count queue", logging.Error(err))
		return ""
	}
	return queueStatusLine(count)
}

func queueStatusLine(count int) string {
	return fmt.Sprintf("%d file(s) in queue", count)
}

func withOperation(ctx context.Context, operation string) context.Context {
	return services.WithOperation(ctx, operation)
}
