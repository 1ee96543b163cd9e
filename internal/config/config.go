package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state and log directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Category is one entry of the ordered category table.
type Category struct {
	Name       string   `toml:"name" yaml:"name"`
	Extensions []string `toml:"extensions" yaml:"extensions"`
}

// LabelRule maps filename substrings to a label. Rules are evaluated in order.
type LabelRule struct {
	Label    string   `toml:"label" yaml:"label"`
	Contains []string `toml:"contains" yaml:"contains"`
}

// Organize contains configuration for organize and restore runs.
type Organize struct {
	BackupDirName  string `toml:"backup_dir_name"`
	OthersCategory string `toml:"others_category"`
	PreviewLimit   int    `toml:"preview_limit"`
	RestoreMode    string `toml:"restore_mode"`
	MinFreeMB      int    `toml:"min_free_mb"`
}

// Naming contains configuration for date buckets and renamed files.
type Naming struct {
	// DateLayout is a Go time layout; the default renders "2024/03_March".
	DateLayout string `toml:"date_layout"`
	// TimestampLayout is a Go time layout for the wall-clock part of new names.
	TimestampLayout string      `toml:"timestamp_layout"`
	DefaultLabel    string      `toml:"default_label"`
	Labels          []LabelRule `toml:"labels"`
}

// Queue contains configuration for the persisted file queue.
type Queue struct {
	ClearAfterOrganize bool `toml:"clear_after_organize"`
}

// Scheduler contains configuration for the recurring organize timer.
type Scheduler struct {
	Enabled         bool `toml:"enabled"`
	IntervalMinutes int  `toml:"interval_minutes"`
}

// Dupes contains configuration for duplicate detection.
type Dupes struct {
	CacheSize int `toml:"cache_size"`
}

// S3 contains configuration for s3:// export destinations.
type S3 struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Export contains configuration for archive exports.
type Export struct {
	S3 S3 `toml:"s3"`
}

// Notifications contains configuration for ntfy push notifications sent when
// a scheduled organize run finishes.
type Notifications struct {
	// NtfyTopic is the full topic URL, such as https://ntfy.sh/my-files.
	// Empty disables notifications.
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	// NotifyIdle also reports ticks that found the queue empty.
	NotifyIdle bool `toml:"notify_idle"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for filesort.
//
// Configuration sections by subsystem:
//   - Paths: state (queue database, lock, socket) and log directories
//   - Categories / CategoriesFile: ordered extension table used by the classifier
//   - Organize: backup folder, sentinel category, report limit, restore mode
//   - Naming: date bucket and renamed file layouts, label heuristics
//   - Queue: post-run queue handling
//   - Scheduler: recurring organize interval
//   - Dupes: digest cache sizing
//   - Export: remote archive destinations
//   - Notifications: ntfy results of scheduled runs
//   - Logging: log format, level, and retention
type Config struct {
	Paths          Paths         `toml:"paths"`
	CategoriesFile string        `toml:"categories_file"`
	Categories     []Category    `toml:"categories"`
	Organize       Organize      `toml:"organize"`
	Naming         Naming        `toml:"naming"`
	Queue          Queue         `toml:"queue"`
	Scheduler      Scheduler     `toml:"scheduler"`
	Dupes          Dupes         `toml:"dupes"`
	Export         Export        `toml:"export"`
	Notifications  Notifications `toml:"notifications"`
	Logging        Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg := Default()
	// Array tables append during decode, so table defaults are applied in normalize.
	cfg.Categories = nil
	cfg.Naming.Labels = nil

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("filesort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the location of the queue database.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.StateDir, "queue.db")
}

// SocketPath returns the daemon IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "filesort.sock")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "filesortd.lock")
}

// PIDPath returns the daemon pid file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "filesort.pid")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
