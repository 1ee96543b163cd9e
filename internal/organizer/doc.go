// Package organizer moves queued files into category and date folders and
// restores the previous layout from the backup snapshot.
//
// A real run copies every queued file into the backup directory, classifies
// each file by extension, renames it and moves it under
// <root>/<Category>/<date bucket>. Preview runs compute the same plan without
// touching the filesystem. Every backup copy and move of a real run is
// journaled in the queue database so restore can invert exactly that run.
// Per-file failures are collected on the report and never abort a batch.
package organizer
