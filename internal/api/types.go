package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Result is the structured outcome of a session operation.
type Result struct {
	Operation string   `json:"operation"`
	OK        bool     `json:"ok"`
	Kind      string   `json:"kind,omitempty"`
	Message   string   `json:"message,omitempty"`
	Lines     []string `json:"lines,omitempty"`
	Total     int      `json:"total"`
	Truncated bool     `json:"truncated,omitempty"`
	RunID     string   `json:"runId,omitempty"`

	Failures   []FileFailure    `json:"failures,omitempty"`
	Skipped    []FileSkip       `json:"skipped,omitempty"`
	Queue      []QueueEntry     `json:"queue,omitempty"`
	Duplicates []DuplicateEntry `json:"duplicates,omitempty"`
	Status     *SessionStatus   `json:"status,omitempty"`
}

// FileFailure is a per-file error collected during a batch.
type FileFailure struct {
	Path  string `json:"path"`
	Stage string `json:"stage,omitempty"`
	Error string `json:"error"`
}

// FileSkip is a file left out of a batch, with the reason.
type FileSkip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// QueueEntry describes a queued file.
type QueueEntry struct {
	ID      int64  `json:"id"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	AddedAt string `json:"addedAt,omitempty"`
}

// DuplicateEntry is a queued file whose content matches an earlier entry.
type DuplicateEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Original string `json:"original"`
	Digest   string `json:"digest"`
}

// RunInfo summarizes the most recent real organize run.
type RunInfo struct {
	ID         string `json:"id"`
	Root       string `json:"root"`
	Trigger    string `json:"trigger"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
	Moved      int    `json:"moved"`
	Failed     int    `json:"failed"`
}

// BackupInfo points at the restorable snapshot.
type BackupInfo struct {
	RunID     string `json:"runId"`
	Root      string `json:"root"`
	Dir       string `json:"dir"`
	CreatedAt string `json:"createdAt"`
}

// SchedulerStatus reports the recurring organize timer.
type SchedulerStatus struct {
	Running         bool   `json:"running"`
	IntervalMinutes int    `json:"intervalMinutes"`
	LastRun         string `json:"lastRun,omitempty"`
	NextRun         string `json:"nextRun,omitempty"`
	LastResult      string `json:"lastResult,omitempty"`
	LastError       string `json:"lastError,omitempty"`
}

// SessionStatus aggregates queue, backup and scheduler state.
type SessionStatus struct {
	QueuedFiles int              `json:"queuedFiles"`
	QueueDBPath string           `json:"queueDbPath"`
	LastRun     *RunInfo         `json:"lastRun,omitempty"`
	Backup      *BackupInfo      `json:"backup,omitempty"`
	Scheduler   *SchedulerStatus `json:"scheduler,omitempty"`
	DaemonPID   int              `json:"daemonPid,omitempty"`
	LockPath    string           `json:"lockPath,omitempty"`
	LogPath     string           `json:"logPath,omitempty"`
}

// StatusLine is one labelled health line in status output.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}
