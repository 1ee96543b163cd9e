// Package naming builds date buckets and renamed filenames for organized files.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"filesort/internal/config"
)

// Namer derives labels, date buckets and new filenames. It is safe for
// concurrent use; batches are not.
type Namer struct {
	dateLayout      string
	timestampLayout string
	defaultLabel    string
	rules           []config.LabelRule
	now             func() time.Time

	mu sync.Mutex
}

// New constructs a Namer from naming settings. A nil clock uses time.Now.
func New(cfg config.Naming, now func() time.Time) *Namer {
	if now == nil {
		now = time.Now
	}
	defaults := config.Default().Naming
	if strings.TrimSpace(cfg.DateLayout) == "" {
		cfg.DateLayout = defaults.DateLayout
	}
	if strings.TrimSpace(cfg.TimestampLayout) == "" {
		cfg.TimestampLayout = defaults.TimestampLayout
	}
	if strings.TrimSpace(cfg.DefaultLabel) == "" {
		cfg.DefaultLabel = defaults.DefaultLabel
	}
	if len(cfg.Labels) == 0 {
		cfg.Labels = defaults.Labels
	}
	rules := make([]config.LabelRule, len(cfg.Labels))
	for i, rule := range cfg.Labels {
		rules[i] = config.LabelRule{Label: rule.Label, Contains: append([]string(nil), rule.Contains...)}
	}
	return &Namer{
		dateLayout:      cfg.DateLayout,
		timestampLayout: cfg.TimestampLayout,
		defaultLabel:    cfg.DefaultLabel,
		rules:           rules,
		now:             now,
	}
}

// DateBucket renders the relative directory for a modification time, such as
// "2024/03_March" with the default layout.
func (n *Namer) DateBucket(modTime time.Time) string {
	return filepath.FromSlash(modTime.In(time.Local).Format(n.dateLayout))
}

// Label returns the first rule label whose substring appears in the
// lowercased basename, or the default label.
func (n *Namer) Label(basename string) string {
	lower := cases.Lower(language.Und).String(basename)
	for _, rule := range n.rules {
		for _, needle := range rule.Contains {
			if needle != "" && strings.Contains(lower, needle) {
				return rule.Label
			}
		}
	}
	return n.defaultLabel
}

// NewName builds a single new filename from the current clock. Use a Batch
// when several names are produced in one run.
func (n *Namer) NewName(original string) string {
	return n.format(original, n.clock().UnixMilli())
}

// Batch starts a naming batch. Names handed out by one batch are distinct
// even when the clock does not advance between calls.
func (n *Namer) Batch() *Batch {
	return &Batch{namer: n}
}

func (n *Namer) clock() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.now()
}

func (n *Namer) format(original string, millis int64) string {
	ts := time.UnixMilli(millis).In(time.Local)
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%s_%04d%s", n.Label(base), ts.Format(n.timestampLayout), millis%10000, ext)
}

// Batch hands out strictly increasing millisecond ticks.
type Batch struct {
	namer *Namer
	last  int64
}

// NewName returns the next unique name for original within this batch.
func (b *Batch) NewName(original string) string {
	millis := b.namer.clock().UnixMilli()
	if millis <= b.last {
		millis = b.last + 1
	}
	b.last = millis
	return b.namer.format(original, millis)
}
