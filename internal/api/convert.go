package api

import (
	"errors"
	"path/filepath"
	"time"

	"filesort/internal/dupes"
	"filesort/internal/organizer"
	"filesort/internal/queue"
	"filesort/internal/scheduler"
	"filesort/internal/services"
)

// NewResult returns a successful result for the operation.
func NewResult(operation string) *Result {
	return &Result{Operation: operation, OK: true}
}

// Failed builds the result reported for a failed operation.
func Failed(operation string, err error) *Result {
	return &Result{
		Operation: operation,
		OK:        false,
		Kind:      services.Kind(err),
		Message:   services.Message(err),
	}
}

// Err reconstructs a classified error from a failed result. It returns nil
// for successful results.
func (r *Result) Err() error {
	if r == nil || r.OK {
		return nil
	}
	var marker error
	switch r.Kind {
	case services.KindUserInput:
		marker = services.ErrUserInput
	case services.KindState:
		marker = services.ErrState
	case services.KindFileIO:
		marker = services.ErrFileIO
	default:
		return errors.New(r.Message)
	}
	return services.Wrap(marker, "", "", r.Message, nil)
}

// FromEntries converts queue entries to their transport form.
func FromEntries(entries []queue.Entry) []QueueEntry {
	out := make([]QueueEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, QueueEntry{
			ID:      entry.ID,
			Path:    entry.Path,
			Name:    filepath.Base(entry.Path),
			AddedAt: formatTime(entry.AddedAt),
		})
	}
	return out
}

// FromRun converts a run record. A nil run yields nil.
func FromRun(run *queue.Run) *RunInfo {
	if run == nil {
		return nil
	}
	info := &RunInfo{
		ID:        run.ID,
		Root:      run.Root,
		Trigger:   run.Trigger,
		StartedAt: formatTime(run.StartedAt),
		Moved:     run.Moved,
		Failed:    run.Failed,
	}
	if run.FinishedAt != nil {
		info.FinishedAt = formatTime(*run.FinishedAt)
	}
	return info
}

// FromBackup converts a backup record. A nil record yields nil.
func FromBackup(record *queue.BackupRecord) *BackupInfo {
	if record == nil {
		return nil
	}
	return &BackupInfo{
		RunID:     record.RunID,
		Root:      record.Root,
		Dir:       record.Dir,
		CreatedAt: formatTime(record.CreatedAt),
	}
}

// ApplyReport copies an organizer report into the result, truncating the
// display lines to limit.
func ApplyReport(result *Result, report *organizer.Report, limit int) {
	if result == nil || report == nil {
		return
	}
	result.RunID = report.RunID
	result.Total = len(report.Actions)
	result.Lines, result.Truncated = report.Summary(limit)
	for _, failure := range report.Failures {
		msg := ""
		if failure.Err != nil {
			msg = failure.Err.Error()
		}
		result.Failures = append(result.Failures, FileFailure{Path: failure.Path, Stage: failure.Stage, Error: msg})
	}
	for _, skip := range report.Skipped {
		result.Skipped = append(result.Skipped, FileSkip{Path: skip.Path, Reason: skip.Reason})
	}
}

// ApplyDuplicates copies duplicate finder output into the result.
func ApplyDuplicates(result *Result, found dupes.Result) {
	if result == nil {
		return
	}
	result.Total = len(found.Duplicates)
	for _, dup := range found.Duplicates {
		result.Duplicates = append(result.Duplicates, DuplicateEntry{
			Name:     dup.Name,
			Path:     dup.Path,
			Original: dup.Original,
			Digest:   dup.Digest,
		})
	}
	for _, skip := range found.Skipped {
		result.Skipped = append(result.Skipped, FileSkip{Path: skip.Path, Reason: skip.Reason})
	}
}

// FormatTime renders a timestamp the way API payloads carry it.
func FormatTime(t time.Time) string {
	return formatTime(t)
}

// ParseTime parses a payload timestamp, returning the zero time on failure.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateTimeFormat, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// FromSchedulerStatus converts a scheduler snapshot.
func FromSchedulerStatus(status scheduler.Status) *SchedulerStatus {
	return &SchedulerStatus{
		Running:         status.Running,
		IntervalMinutes: int(status.Interval / time.Minute),
		LastRun:         formatTime(status.LastRun),
		NextRun:         formatTime(status.NextRun),
		LastResult:      status.LastResult,
		LastError:       status.LastError,
	}
}
