package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gofrs/flock"

	"filesort/internal/api"
	"filesort/internal/config"
	"filesort/internal/logging"
	"filesort/internal/notifications"
	"filesort/internal/queue"
	"filesort/internal/scheduler"
	"filesort/internal/session"
)

// ErrAlreadyRunning is returned when another daemon holds the state lock.
var ErrAlreadyRunning = errors.New("another filesort daemon instance is already running")

// Daemon owns the session and scheduler for one state directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *queue.Store
	session   *session.Session
	scheduler *scheduler.Scheduler
	notifier  notifications.Service
	logPath   string

	lockPath string
	lock     *flock.Flock

	mu       sync.Mutex
	shutdown context.CancelFunc
	closed   bool
}

// Option customizes daemon construction.
type Option func(*options)

type options struct {
	sessionOpts   []session.Option
	schedulerOpts []scheduler.Option
	notifier      notifications.Service
}

// WithSessionOptions forwards options to the session.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// WithSchedulerOptions forwards options to the scheduler.
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(o *options) {
		o.schedulerOpts = append(o.schedulerOpts, opts...)
	}
}

// WithNotifier replaces the ntfy service built from [notifications].
func WithNotifier(notifier notifications.Service) Option {
	return func(o *options) {
		o.notifier = notifier
	}
}

// New constructs a daemon and acquires the single-instance lock.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, logPath string, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	sess, err := session.New(cfg, store, logger, o.sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	lockPath := cfg.LockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	notifier := o.notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	schedulerOpts := append([]scheduler.Option{scheduler.WithNotifier(notifier)}, o.schedulerOpts...)

	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		session:   sess,
		scheduler: scheduler.New(cfg, sess, logger, schedulerOpts...),
		notifier:  notifier,
		logPath:   logPath,
		lockPath:  lockPath,
		lock:      lock,
	}, nil
}

// TestNotification sends a test event through the configured notifier.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	return notifications.SendTest(ctx, d.notifier)
}

// Session returns the session served by this daemon.
func (d *Daemon) Session() *session.Session {
	return d.session
}

// Start enables the recurring organize timer and returns its acknowledgement.
func (d *Daemon) Start(ctx context.Context) (string, error) {
	if err := d.scheduler.Start(ctx); err != nil {
		return "", err
	}
	return d.scheduler.StartedMessage(), nil
}

// Stop disables the timer, waiting for an in-flight scheduled run.
func (d *Daemon) Stop() {
	d.scheduler.Stop()
}

// Running reports whether the timer is enabled.
func (d *Daemon) Running() bool {
	return d.scheduler.Running()
}

// SetShutdown registers the function that ends the daemon process.
func (d *Daemon) SetShutdown(cancel context.CancelFunc) {
	d.mu.Lock()
	d.shutdown = cancel
	d.mu.Unlock()
}

// RequestShutdown asks the hosting process to exit. It reports false when no
// shutdown hook is registered.
func (d *Daemon) RequestShutdown() bool {
	d.mu.Lock()
	cancel := d.shutdown
	d.mu.Unlock()
	if cancel == nil {
		return false
	}
	d.logger.Info("daemon shutdown requested", logging.EventType("daemon_shutdown_requested"))
	cancel()
	return true
}

// Close stops the timer, releases the lock and closes the store.
func (d *Daemon) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	return d.store.Close()
}

// Status returns session status decorated with scheduler and process details.
func (d *Daemon) Status(ctx context.Context) (*api.Result, error) {
	res, err := d.session.Status(ctx)
	if res != nil && res.Status != nil {
		res.Status.Scheduler = api.FromSchedulerStatus(d.scheduler.Status())
		res.Status.DaemonPID = os.Getpid()
		res.Status.LockPath = d.lockPath
		res.Status.LogPath = d.logPath
	}
	return res, err
}

// DatabaseHealth returns queue database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.Health, error) {
	return d.store.CheckHealth(ctx)
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// LockPath returns the path of the single-instance lock.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
