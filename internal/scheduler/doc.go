// Package scheduler runs organize passes on a fixed interval.
//
// The Scheduler owns one goroutine driven by a ticker. Each tick asks its
// Runner how many files are queued; an empty queue logs a notice and waits
// for the next tick, otherwise a real organize run is triggered. Start fails
// when the scheduler is already running, Stop cancels the loop and waits for
// an in-flight run to finish.
//
// The Runner is normally the session, whose mutex serializes scheduled runs
// with foreground commands. Only one daemon holds the state directory lock,
// so at most one scheduler runs per queue.
package scheduler
