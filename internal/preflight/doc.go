// Package preflight provides readiness checks for the filesystem locations
// filesort writes to.
//
// These checks run in two contexts:
//   - The organizer calls CheckFreeSpace before copying queued files into the
//     backup directory. A failure aborts the run before anything is touched.
//   - The CLI "filesort status" command calls RunAll to display state and log
//     directory health.
package preflight
