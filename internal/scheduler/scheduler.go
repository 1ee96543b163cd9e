package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"filesort/internal/config"
	"filesort/internal/logging"
	"filesort/internal/notifications"
)

const component = "scheduler"

// ErrAlreadyRunning is returned by Start when the loop is active.
var ErrAlreadyRunning = errors.New("scheduler already running")

// Runner performs the work of a tick.
type Runner interface {
	// Pending reports the number of queued files.
	Pending(ctx context.Context) (int, error)
	// RunScheduled organizes the queue and returns a one-line summary.
	RunScheduled(ctx context.Context) (string, error)
}

// Scheduler triggers organize runs on a fixed interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
	notifier notifications.Service
	now      func() time.Time

	mu         sync.RWMutex
	running    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lastRun    time.Time
	nextRun    time.Time
	lastResult string
	lastErr    error
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides the configured interval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithNotifier publishes the outcome of each tick.
func WithNotifier(notifier notifications.Service) Option {
	return func(s *Scheduler) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithClock overrides the time source used for status timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a scheduler using [scheduler] interval_minutes.
func New(cfg *config.Config, runner Runner, logger *slog.Logger, opts ...Option) *Scheduler {
	minutes := config.DefaultSchedulerInterval
	if cfg != nil && cfg.Scheduler.IntervalMinutes > 0 {
		minutes = cfg.Scheduler.IntervalMinutes
	}
	s := &Scheduler{
		runner:   runner,
		interval: time.Duration(minutes) * time.Minute,
		logger:   logging.NewComponentLogger(logger, component),
		notifier: notifications.NewService(nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// StartedMessage is the acknowledgement shown when the timer is enabled.
func (s *Scheduler) StartedMessage() string {
	return "Scheduler started: every " + describeInterval(s.interval)
}

// Start launches the ticker loop. The loop stops when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.runner == nil {
		return errors.New("scheduler runner not configured")
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.nextRun = s.now().Add(s.interval)
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(runCtx)

	s.logger.Info(s.StartedMessage(),
		logging.Duration("interval", s.interval),
		logging.EventType("scheduler_started"),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.nextRun = time.Time{}
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped", logging.EventType("scheduler_stopped"))
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func describeInterval(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return d.String()
}
