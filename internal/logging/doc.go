// Package logging assembles structured slog loggers and formatting helpers used
// across filesort.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so organize runs tag every line with their
// run ID and operation. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
