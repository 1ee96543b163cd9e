// Package api defines the transport types returned by session operations and
// carried over IPC to the CLI.
//
// # Key Types
//
// Result: outcome of one session operation. OK is false when the operation
// failed; Kind then classifies the failure (user_input, state, file_io) and
// Message carries the text to show. Lines holds the display summary, already
// truncated to the configured preview limit.
//
// QueueEntry, RunInfo, BackupInfo, SchedulerStatus: read models for queue
// listings and status output.
//
// # Converters
//
// FromEntries, FromRun, FromBackup and FromSchedulerStatus translate internal
// models. ApplyReport and ApplyDuplicates fold organizer and duplicate finder
// outcomes into a Result.
//
// Timestamps use RFC3339 with milliseconds. Result.Err rebuilds a classified
// error on the client side so callers can use errors.Is with the services
// markers after a round trip.
package api
