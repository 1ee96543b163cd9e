package testsupport

import (
	"path/filepath"
	"testing"

	"filesort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithRestoreMode overrides the default restore mode.
func WithRestoreMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.RestoreMode = mode
	}
}

// WithPreviewLimit overrides the report line limit.
func WithPreviewLimit(limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.PreviewLimit = limit
	}
}

// WithClearAfterOrganize enables clearing moved entries after a real run.
func WithClearAfterOrganize() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.ClearAfterOrganize = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
