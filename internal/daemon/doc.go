// Package daemon coordinates the long-running filesort process.
//
// It wires configuration, queue storage, the session and the scheduler into a
// single lifecycle with flock-based locking so only one daemon, and therefore
// one scheduler, runs per state directory. Start and Stop toggle the
// recurring organize timer; the process itself keeps serving IPC requests
// until Shutdown is requested or a signal arrives.
//
// Keep orchestration logic here: file handling belongs in the organizer and
// session packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
