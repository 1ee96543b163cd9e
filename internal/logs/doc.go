// Package logs tails the daemon log for `filesort logs`.
//
// Reads stream with bounded memory: a negative offset returns the last N
// lines, a positive offset resumes where the previous call stopped, and
// follow mode polls until new lines arrive or the wait elapses. The daemon
// serves these reads over IPC and the CLI falls back to reading the file
// directly when no daemon is running.
package logs
