// Package main hosts the filesort CLI entrypoint and command graph.
//
// Queue and organize commands talk to the background daemon over its unix
// socket when one is running, and otherwise open the queue database directly
// and run the same session operations in-process. Daemon lifecycle commands
// launch, stop, and inspect the long-running process that hosts the scheduler.
//
// Keep this package lean: behavior lives in internal/session and friends, and
// commands here only translate flags into calls and results into text.
package main
