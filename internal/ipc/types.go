package ipc

// serviceName is the JSON-RPC service prefix.
const serviceName = "Filesort"

// Empty is the request for operations without arguments.
type Empty struct{}

// AddRequest queues files.
type AddRequest struct {
	Paths []string `json:"paths"`
}

// RestoreRequest selects the restore mode; empty uses the configured default.
type RestoreRequest struct {
	Mode string `json:"mode"`
}

// ExportRequest names the archive destination.
type ExportRequest struct {
	Dest string `json:"dest"`
}

// StartResponse indicates whether the scheduler was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// ShutdownResponse acknowledges a process shutdown request.
type ShutdownResponse struct {
	Acknowledged bool `json:"acknowledged"`
	PID          int  `json:"pid"`
}

// TestNotifyResponse reports the outcome of a test notification.
type TestNotifyResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// DatabaseHealthResponse reports queue database diagnostics.
type DatabaseHealthResponse struct {
	DBPath         string `json:"db_path"`
	SchemaVersion  int    `json:"schema_version"`
	QueuedFiles    int    `json:"queued_files"`
	HasBackup      bool   `json:"has_backup"`
	IntegrityCheck bool   `json:"integrity_check"`
}

// LogTailRequest reads the daemon log. Offset < 0 returns the last Limit lines.
type LogTailRequest struct {
	Offset     int64  `json:"offset"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int    `json:"wait_millis"`
	Filter     string `json:"filter,omitempty"`
}

// LogTailResponse carries log lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
