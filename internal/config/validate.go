package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCategories(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return errors.New("categories must include at least one category")
	}
	names := make(map[string]struct{}, len(c.Categories))
	owners := make(map[string]string)
	for i, category := range c.Categories {
		if err := checkDirName(category.Name); err != nil {
			return fmt.Errorf("categories[%d].name: %w", i, err)
		}
		if strings.EqualFold(category.Name, c.Organize.BackupDirName) {
			return fmt.Errorf("categories: %q is the backup directory name", category.Name)
		}
		key := strings.ToLower(category.Name)
		if _, ok := names[key]; ok {
			return fmt.Errorf("categories: duplicate category %q", category.Name)
		}
		names[key] = struct{}{}
		if strings.EqualFold(category.Name, c.Organize.OthersCategory) {
			return fmt.Errorf("categories: %q is reserved for unmatched extensions", category.Name)
		}
		if len(category.Extensions) == 0 {
			return fmt.Errorf("categories[%d] (%s) must list at least one extension", i, category.Name)
		}
		for _, ext := range category.Extensions {
			if owner, ok := owners[ext]; ok {
				return fmt.Errorf("categories: extension %q listed under both %s and %s", ext, owner, category.Name)
			}
			owners[ext] = category.Name
		}
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if err := checkDirName(c.Organize.BackupDirName); err != nil {
		return fmt.Errorf("organize.backup_dir_name: %w", err)
	}
	if err := checkDirName(c.Organize.OthersCategory); err != nil {
		return fmt.Errorf("organize.others_category: %w", err)
	}
	if strings.EqualFold(c.Organize.OthersCategory, c.Organize.BackupDirName) {
		return errors.New("organize.others_category must differ from organize.backup_dir_name")
	}
	if c.Organize.PreviewLimit < 1 {
		return errors.New("organize.preview_limit must be positive")
	}
	switch c.Organize.RestoreMode {
	case RestoreModeJournal, RestoreModeReset:
	default:
		return fmt.Errorf("organize.restore_mode: unsupported value %q (use %q or %q)", c.Organize.RestoreMode, RestoreModeJournal, RestoreModeReset)
	}
	return nil
}

func (c *Config) validateNaming() error {
	for i, rule := range c.Naming.Labels {
		if rule.Label == "" {
			return fmt.Errorf("naming.labels[%d].label must be set", i)
		}
		if len(rule.Contains) == 0 {
			return fmt.Errorf("naming.labels[%d] (%s) must list at least one substring", i, rule.Label)
		}
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.IntervalMinutes < 1 {
		return errors.New("scheduler.interval_minutes must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic: %q must be an http(s) topic URL", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// checkDirName rejects names that would not stay a single directory directly
// under the organized root.
func checkDirName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("must be set")
	case name == "." || name == "..":
		return fmt.Errorf("%q is not a directory name", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%q must be a single directory name", name)
	}
	return nil
}
