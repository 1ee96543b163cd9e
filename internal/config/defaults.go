package config

const (
	defaultConfigPath       = "~/.config/filesort/config.toml"
	defaultStateDir         = "~/.local/share/filesort"
	defaultLogDir           = "~/.local/share/filesort/logs"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultBackupDirName    = "_backup"
	defaultOthersCategory   = "Others"
	defaultPreviewLimit     = 20
	defaultRestoreMode      = RestoreModeJournal
	defaultDateLayout       = "2006/01_January"
	defaultTimestampLayout  = "2006_01_02_150405"
	defaultLabel            = "File"
	defaultIntervalMinutes  = 10
	defaultDupesCacheSize   = 4096
	defaultS3Region         = "us-east-1"
	defaultNtfyTimeout      = 10
)

// DefaultSchedulerInterval is the organize interval in minutes.
const DefaultSchedulerInterval = defaultIntervalMinutes

// Restore modes.
const (
	RestoreModeJournal = "journal"
	RestoreModeReset   = "reset"
)

// DefaultCategories returns the built-in category table in match order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif"}},
		{Name: "Documents", Extensions: []string{".pdf", ".docx", ".txt", ".xlsx"}},
		{Name: "Audio", Extensions: []string{".mp3", ".wav", ".aac"}},
		{Name: "Videos", Extensions: []string{".mp4", ".mov", ".avi"}},
		{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z"}},
		{Name: "Code", Extensions: []string{".py", ".html", ".css", ".js"}},
	}
}

// DefaultLabelRules returns the built-in filename label heuristics in priority order.
func DefaultLabelRules() []LabelRule {
	return []LabelRule{
		{Label: "Invoice", Contains: []string{"invoice"}},
		{Label: "Resume", Contains: []string{"resume", "cv"}},
		{Label: "Report", Contains: []string{"report"}},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Categories: DefaultCategories(),
		Organize: Organize{
			BackupDirName:  defaultBackupDirName,
			OthersCategory: defaultOthersCategory,
			PreviewLimit:   defaultPreviewLimit,
			RestoreMode:    defaultRestoreMode,
		},
		Naming: Naming{
			DateLayout:      defaultDateLayout,
			TimestampLayout: defaultTimestampLayout,
			DefaultLabel:    defaultLabel,
			Labels:          DefaultLabelRules(),
		},
		Scheduler: Scheduler{
			Enabled:         true,
			IntervalMinutes: defaultIntervalMinutes,
		},
		Dupes: Dupes{
			CacheSize: defaultDupesCacheSize,
		},
		Export: Export{
			S3: S3{Region: defaultS3Region, UseSSL: true},
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
