// Package session owns the file queue and backup record for one process and
// exposes every user operation as a method returning an *api.Result.
//
// A Session is shared by the daemon's IPC server, the scheduler and, when no
// daemon is running, the CLI itself. Its mutex serializes operations so a
// scheduled organize never interleaves with a foreground add, clear or
// restore. Failed operations return both a Result describing the failure
// (OK=false with Kind and Message) and the classified error.
package session
