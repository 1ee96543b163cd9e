// Package queue persists the file queue, the backup record and the per-run
// move journal in SQLite.
//
// The Store owns the database connection, schema initialization and busy
// retries. Queue entries are unique by absolute path and keep insertion
// order. At most one backup record exists; writing a new one replaces the
// previous record and its journal. The journal lists the exact backup copies
// and moves of the most recent real organize run so restore can invert it.
//
// Schema changes bump the version in schema.go; users delete the database to
// adopt the new schema.
package queue
