package organizer

import "fmt"

// Action is one planned or performed relocation.
type Action struct {
	Source   string
	Dest     string
	Category string
	Done     bool
}

// Failure is a per-file error that did not stop the batch.
type Failure struct {
	Path  string
	Stage string
	Err   error
}

// Skip records a queued file that was not processed.
type Skip struct {
	Path   string
	Reason string
}

// Report is the full outcome of an organize, preview or restore run.
type Report struct {
	RunID     string
	Preview   bool
	Root      string
	BackupDir string
	Actions   []Action
	Lines     []string
	Failures  []Failure
	Skipped   []Skip
}

// Moved returns the sources of completed moves.
func (r *Report) Moved() []string {
	var out []string
	for _, action := range r.Actions {
		if action.Done {
			out = append(out, action.Source)
		}
	}
	return out
}

// Summary returns at most limit lines plus a truncation notice.
func (r *Report) Summary(limit int) ([]string, bool) {
	if len(r.Lines) == 0 {
		if r.Preview {
			return []string{"No actionable files found for preview."}, false
		}
		return []string{"No actionable files found."}, false
	}
	if limit <= 0 || len(r.Lines) <= limit {
		return append([]string(nil), r.Lines...), false
	}
	lines := append([]string(nil), r.Lines[:limit]...)
	lines = append(lines, fmt.Sprintf("...and %d more", len(r.Lines)-limit))
	return lines, true
}

func (r *Report) addLine(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

func (r *Report) fail(path, stage string, err error) {
	r.Failures = append(r.Failures, Failure{Path: path, Stage: stage, Err: err})
}

func (r *Report) skip(path, reason string) {
	r.Skipped = append(r.Skipped, Skip{Path: path, Reason: reason})
}
