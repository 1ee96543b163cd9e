package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"filesort/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "filesort")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if len(cfg.Categories) != len(config.DefaultCategories()) {
		t.Fatalf("expected default categories, got %d", len(cfg.Categories))
	}
	if cfg.Categories[0].Name != "Images" {
		t.Fatalf("expected Images first, got %q", cfg.Categories[0].Name)
	}
	if cfg.Organize.OthersCategory != "Others" {
		t.Fatalf("unexpected others category %q", cfg.Organize.OthersCategory)
	}
	if cfg.Organize.BackupDirName != "_backup" {
		t.Fatalf("unexpected backup dir %q", cfg.Organize.BackupDirName)
	}
	if cfg.Organize.PreviewLimit != 20 {
		t.Fatalf("unexpected preview limit %d", cfg.Organize.PreviewLimit)
	}
	if cfg.Scheduler.IntervalMinutes != 10 {
		t.Fatalf("unexpected scheduler interval %d", cfg.Scheduler.IntervalMinutes)
	}
	if cfg.Naming.DateLayout != "2006/01_January" {
		t.Fatalf("unexpected date layout %q", cfg.Naming.DateLayout)
	}
	if len(cfg.Naming.Labels) != 3 || cfg.Naming.Labels[1].Label != "Resume" {
		t.Fatalf("unexpected label rules %+v", cfg.Naming.Labels)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPathReplacesCategoryTable(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "filesort.toml")
	content := `
[paths]
state_dir = "` + filepath.Join(tempDir, "state") + `"

[[categories]]
name = "Pictures"
extensions = ["JPG", "png"]

[organize]
preview_limit = 5

[scheduler]
interval_minutes = 3
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if len(cfg.Categories) != 1 {
		t.Fatalf("expected file categories to replace defaults, got %+v", cfg.Categories)
	}
	got := cfg.Categories[0]
	if got.Name != "Pictures" || strings.Join(got.Extensions, ",") != ".jpg,.png" {
		t.Fatalf("unexpected normalized category %+v", got)
	}
	if cfg.Organize.PreviewLimit != 5 {
		t.Fatalf("expected preview limit 5, got %d", cfg.Organize.PreviewLimit)
	}
	if cfg.Scheduler.IntervalMinutes != 3 {
		t.Fatalf("expected interval 3, got %d", cfg.Scheduler.IntervalMinutes)
	}
}

func TestLoadCategoriesFromYAML(t *testing.T) {
	tempDir := t.TempDir()
	tablePath := filepath.Join(tempDir, "categories.yaml")
	table := "categories:\n  - name: Ebooks\n    extensions: [epub, .mobi]\n  - name: Images\n    extensions: [.jpg]\n"
	if err := os.WriteFile(tablePath, []byte(table), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	configPath := filepath.Join(tempDir, "filesort.toml")
	if err := os.WriteFile(configPath, []byte("categories_file = \""+tablePath+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[0].Name != "Ebooks" {
		t.Fatalf("unexpected categories %+v", cfg.Categories)
	}
	if strings.Join(cfg.Categories[0].Extensions, ",") != ".epub,.mobi" {
		t.Fatalf("unexpected extensions %v", cfg.Categories[0].Extensions)
	}
}

func TestLoadCategoriesRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if _, err := config.LoadCategories(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("FILESORT_LOG_LEVEL", "DEBUG")
	t.Setenv("FILESORT_SCHEDULER_INTERVAL", "7")
	t.Setenv("FILESORT_S3_ACCESS_KEY", "env-access")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level from env, got %q", cfg.Logging.Level)
	}
	if cfg.Scheduler.IntervalMinutes != 7 {
		t.Errorf("expected interval from env, got %d", cfg.Scheduler.IntervalMinutes)
	}
	if cfg.Export.S3.AccessKey != "env-access" {
		t.Errorf("expected S3 access key from env, got %q", cfg.Export.S3.AccessKey)
	}
}

func TestDotEnvFileIsLoaded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workDir := t.TempDir()
	t.Chdir(workDir)
	t.Setenv("FILESORT_SCHEDULER_INTERVAL", "")
	if err := os.WriteFile(filepath.Join(workDir, ".env"), []byte("FILESORT_S3_SECRET_KEY=dotenv-secret\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("FILESORT_S3_SECRET_KEY") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Export.S3.SecretKey != "dotenv-secret" {
		t.Fatalf("expected secret from .env, got %q", cfg.Export.S3.SecretKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Categories) != len(config.DefaultCategories()) {
		t.Fatalf("sample should carry the default table, got %d categories", len(cfg.Categories))
	}
	if !strings.Contains(cfg.Paths.StateDir, "filesort") {
		t.Fatalf("expected state dir to contain filesort, got %q", cfg.Paths.StateDir)
	}
	if cfg.Scheduler.IntervalMinutes != 10 {
		t.Fatalf("unexpected sample interval %d", cfg.Scheduler.IntervalMinutes)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Categories = append(cfg.Categories, config.Category{Name: "Photos", Extensions: []string{".jpg"}})
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for extension listed twice")
	}

	cfg = config.Default()
	cfg.Categories = append(cfg.Categories, config.Category{Name: "Others", Extensions: []string{".bin"}})
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for reserved category name")
	}

	cfg = config.Default()
	cfg.Organize.RestoreMode = "undo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown restore mode")
	}

	cfg = config.Default()
	cfg.Scheduler.IntervalMinutes = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative interval")
	}

	cfg = config.Default()
	cfg.Organize.BackupDirName = "a/b"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for nested backup dir name")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateRejectsUnsafeDirectoryNames(t *testing.T) {
	cases := map[string]func(*config.Config){
		"category with separator": func(c *config.Config) {
			c.Categories = append(c.Categories, config.Category{Name: "../x", Extensions: []string{".bin"}})
		},
		"category named dot dot": func(c *config.Config) {
			c.Categories = append(c.Categories, config.Category{Name: "..", Extensions: []string{".bin"}})
		},
		"category matches backup dir": func(c *config.Config) {
			c.Categories = append(c.Categories, config.Category{Name: "_backup", Extensions: []string{".bin"}})
		},
		"category matches renamed backup dir": func(c *config.Config) {
			c.Organize.BackupDirName = "Archives"
		},
		"others with separator": func(c *config.Config) {
			c.Organize.OthersCategory = "misc/other"
		},
		"others matches backup dir": func(c *config.Config) {
			c.Organize.OthersCategory = "_backup"
		},
		"backup dir dot": func(c *config.Config) {
			c.Organize.BackupDirName = "."
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
