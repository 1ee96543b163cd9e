// Package notifications publishes scheduled organize results to ntfy.
//
// The daemon runs organize passes with nobody watching a terminal, so the
// outcome of each scheduled run is pushed to the topic configured under
// [notifications]. With no topic configured NewService returns a no-op
// implementation and callers publish unconditionally.
package notifications
