package queue

import "time"

// Entry is a queued file.
type Entry struct {
	ID      int64
	Path    string
	AddedAt time.Time
}

// Run describes one real organize run.
type Run struct {
	ID         string
	Root       string
	Trigger    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Moved      int
	Failed     int
}

// Run triggers.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// BackupRecord points at the most recent pre-move snapshot.
type BackupRecord struct {
	RunID     string
	Root      string
	Dir       string
	CreatedAt time.Time
}

// JournalKind distinguishes journal entries.
type JournalKind string

const (
	// JournalBackup records a copy from an original path into the backup directory.
	JournalBackup JournalKind = "backup"
	// JournalMove records a rename from an original path to its organized destination.
	JournalMove JournalKind = "move"
)

// JournalEntry is one recorded filesystem action of a run.
type JournalEntry struct {
	ID        int64
	RunID     string
	Kind      JournalKind
	Source    string
	Dest      string
	CreatedAt time.Time
}

// Health captures diagnostic information about the queue database.
type Health struct {
	DBPath         string
	SchemaVersion  int
	QueuedFiles    int
	HasBackup      bool
	IntegrityCheck bool
}
