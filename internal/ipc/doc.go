// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// Every session operation travels as an api.Result. A classified failure
// (user input, state, per-file I/O) is carried inside the Result rather than
// as an RPC error, and the client turns it back into a services-marked error
// so callers handle local and remote sessions the same way.
//
// Reuse these types when adding new RPC endpoints to keep the protocol stable
// and compatible with existing command implementations.
package ipc
