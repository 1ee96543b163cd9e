// Package queueaccess hands the CLI one set of session operations whether the
// daemon is reachable over IPC or the queue database has to be opened locally.
package queueaccess
