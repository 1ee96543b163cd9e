package scheduler

import "time"

// Status is a snapshot of scheduler state.
type Status struct {
	Running    bool
	Interval   time.Duration
	LastRun    time.Time
	NextRun    time.Time
	LastResult string
	LastError  string
}

// Status returns the latest scheduler information.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := Status{
		Running:    s.running,
		Interval:   s.interval,
		LastRun:    s.lastRun,
		NextRun:    s.nextRun,
		LastResult: s.lastResult,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}
