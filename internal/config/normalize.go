package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCategories(); err != nil {
		return err
	}
	c.normalizeOrganize()
	c.normalizeNaming()
	if err := c.normalizeScheduler(); err != nil {
		return err
	}
	if c.Dupes.CacheSize <= 0 {
		c.Dupes.CacheSize = defaultDupesCacheSize
	}
	c.normalizeExport()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCategories() error {
	c.CategoriesFile = strings.TrimSpace(c.CategoriesFile)
	if c.CategoriesFile != "" {
		path, err := expandPath(c.CategoriesFile)
		if err != nil {
			return fmt.Errorf("categories_file: %w", err)
		}
		c.CategoriesFile = path
		categories, err := LoadCategories(path)
		if err != nil {
			return fmt.Errorf("categories_file: %w", err)
		}
		c.Categories = categories
	}
	if len(c.Categories) == 0 {
		c.Categories = DefaultCategories()
	}
	for i := range c.Categories {
		c.Categories[i].Name = strings.TrimSpace(c.Categories[i].Name)
		c.Categories[i].Extensions = normalizeExtensions(c.Categories[i].Extensions)
	}
	return nil
}

func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := NormalizeExtension(value)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

// NormalizeExtension lowercases an extension and ensures a leading dot.
func NormalizeExtension(value string) string {
	ext := strings.ToLower(strings.TrimSpace(value))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (c *Config) normalizeOrganize() {
	c.Organize.BackupDirName = strings.TrimSpace(c.Organize.BackupDirName)
	if c.Organize.BackupDirName == "" {
		c.Organize.BackupDirName = defaultBackupDirName
	}
	c.Organize.OthersCategory = strings.TrimSpace(c.Organize.OthersCategory)
	if c.Organize.OthersCategory == "" {
		c.Organize.OthersCategory = defaultOthersCategory
	}
	if c.Organize.PreviewLimit == 0 {
		c.Organize.PreviewLimit = defaultPreviewLimit
	}
	c.Organize.RestoreMode = strings.ToLower(strings.TrimSpace(c.Organize.RestoreMode))
	if c.Organize.RestoreMode == "" {
		c.Organize.RestoreMode = defaultRestoreMode
	}
	if c.Organize.MinFreeMB < 0 {
		c.Organize.MinFreeMB = 0
	}
}

func (c *Config) normalizeNaming() {
	if strings.TrimSpace(c.Naming.DateLayout) == "" {
		c.Naming.DateLayout = defaultDateLayout
	}
	if strings.TrimSpace(c.Naming.TimestampLayout) == "" {
		c.Naming.TimestampLayout = defaultTimestampLayout
	}
	c.Naming.DefaultLabel = strings.TrimSpace(c.Naming.DefaultLabel)
	if c.Naming.DefaultLabel == "" {
		c.Naming.DefaultLabel = defaultLabel
	}
	if len(c.Naming.Labels) == 0 {
		c.Naming.Labels = DefaultLabelRules()
	}
	for i := range c.Naming.Labels {
		rule := &c.Naming.Labels[i]
		rule.Label = strings.TrimSpace(rule.Label)
		needles := make([]string, 0, len(rule.Contains))
		for _, needle := range rule.Contains {
			if trimmed := strings.ToLower(strings.TrimSpace(needle)); trimmed != "" {
				needles = append(needles, trimmed)
			}
		}
		rule.Contains = needles
	}
}

func (c *Config) normalizeScheduler() error {
	if value, ok := os.LookupEnv("FILESORT_SCHEDULER_INTERVAL"); ok && strings.TrimSpace(value) != "" {
		minutes, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("FILESORT_SCHEDULER_INTERVAL: %w", err)
		}
		c.Scheduler.IntervalMinutes = minutes
	}
	if c.Scheduler.IntervalMinutes == 0 {
		c.Scheduler.IntervalMinutes = defaultIntervalMinutes
	}
	return nil
}

func (c *Config) normalizeExport() {
	s3 := &c.Export.S3
	s3.Endpoint = strings.TrimSpace(s3.Endpoint)
	s3.Region = strings.TrimSpace(s3.Region)
	if s3.Region == "" {
		s3.Region = defaultS3Region
	}
	s3.AccessKey = strings.TrimSpace(s3.AccessKey)
	if s3.AccessKey == "" {
		if value, ok := os.LookupEnv("FILESORT_S3_ACCESS_KEY"); ok {
			s3.AccessKey = strings.TrimSpace(value)
		}
	}
	s3.SecretKey = strings.TrimSpace(s3.SecretKey)
	if s3.SecretKey == "" {
		if value, ok := os.LookupEnv("FILESORT_S3_SECRET_KEY"); ok {
			s3.SecretKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	if value, ok := os.LookupEnv("FILESORT_NTFY_TOPIC"); ok && strings.TrimSpace(value) != "" {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("FILESORT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
