// Package services defines shared utilities consumed by the organizer, the
// session layer, and the daemon.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, operation names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     user input errors, state errors, or per-file I/O errors.
//
// Use these helpers when adding new operations so error reporting stays
// uniform between the CLI, the daemon, and the scheduler.
package services
