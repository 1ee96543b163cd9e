// Package daemonctl launches, stops and inspects the background filesort
// daemon on behalf of the CLI.
package daemonctl
