package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Archive modes accepted by output.archive_mode
const (
	ArchiveNone     = "none"
	ArchiveFull     = "full"
	ArchiveMetadata = "metadata"
)

// Config holds all configuration options for igsaved
type Config struct {
	Instagram     InstagramConfig    `yaml:"instagram" json:"instagram"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit" json:"rate_limit"`
	Output        OutputConfig       `yaml:"output" json:"output"`
	Download      DownloadConfig     `yaml:"download" json:"download"`
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`
	Logging       LoggingConfig      `yaml:"logging" json:"logging"`
	Telemetry     TelemetryConfig    `yaml:"telemetry" json:"telemetry"`
	Watch         WatchConfig        `yaml:"watch" json:"watch"`
}

// InstagramConfig holds the session and HTTP settings for the private API
type InstagramConfig struct {
	SessionID string        `yaml:"session_id" json:"session_id" env:"IGSAVED_SESSION_ID"`
	Username  string        `yaml:"username" json:"username" env:"IGSAVED_USERNAME"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" env:"IGSAVED_USER_AGENT"`
	BaseURL   string        `yaml:"base_url" json:"base_url" env:"IGSAVED_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"IGSAVED_TIMEOUT"`
}

// RateLimitConfig paces outgoing requests. It does not back off or retry.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute" env:"IGSAVED_REQUESTS_PER_MINUTE"`
	BurstSize         int `yaml:"burst_size" json:"burst_size" env:"IGSAVED_BURST_SIZE"`
}

// OutputConfig holds output tree, ledger and archive settings
type OutputConfig struct {
	Directory   string `yaml:"directory" json:"directory" env:"IGSAVED_OUTPUT_DIR"`
	LedgerFile  string `yaml:"ledger_file" json:"ledger_file" env:"IGSAVED_LEDGER_FILE"`
	ArchiveMode string `yaml:"archive_mode" json:"archive_mode" env:"IGSAVED_ARCHIVE_MODE"`
}

// DownloadConfig holds per-run download settings
type DownloadConfig struct {
	Collection      string `yaml:"collection" json:"collection" env:"IGSAVED_COLLECTION"`
	Limit           int    `yaml:"limit" json:"limit" env:"IGSAVED_LIMIT"`
	CheckpointEvery int    `yaml:"checkpoint_every" json:"checkpoint_every" env:"IGSAVED_CHECKPOINT_EVERY"`
}

// NotificationConfig controls the end-of-run notification
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled" env:"IGSAVED_NOTIFICATIONS_ENABLED"`
	NotificationType string `yaml:"notification_type" json:"notification_type" env:"IGSAVED_NOTIFICATION_TYPE"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"IGSAVED_LOG_LEVEL"`
	Format string `yaml:"format" json:"format" env:"IGSAVED_LOG_FORMAT"`
	File   string `yaml:"file" json:"file" env:"IGSAVED_LOG_FILE"`
}

// TelemetryConfig enables optional Sentry error reporting
type TelemetryConfig struct {
	SentryDSN   string `yaml:"sentry_dsn" json:"sentry_dsn" env:"IGSAVED_SENTRY_DSN"`
	Environment string `yaml:"environment" json:"environment" env:"IGSAVED_ENVIRONMENT"`
}

// WatchConfig holds settings for the watch command
type WatchConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval" env:"IGSAVED_WATCH_INTERVAL"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Instagram 269.0.0.18.75 Android (26/8.0.0; 480dpi; 1080x1920; OnePlus; 6T Dev; devitron; qcom; en_US; 314665256)",
			BaseURL:   "https://i.instagram.com",
			Timeout:   30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         3,
		},
		Output: OutputConfig{
			Directory:   "downloads",
			LedgerFile:  filepath.Join("data", "downloaded.json"),
			ArchiveMode: ArchiveFull,
		},
		Download: DownloadConfig{
			Limit:           0,
			CheckpointEvery: 0,
		},
		Notifications: NotificationConfig{
			Enabled:          false,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Environment: "production",
		},
		Watch: WatchConfig{
			Interval: 6 * time.Hour,
		},
	}
}

// LoadFromEnv overlays IGSAVED_* environment variables onto c. Variables
// that are not set leave the current value untouched.
func (c *Config) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(c); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. An empty path searches
// the default locations; finding nothing is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile returns the first existing config file in the standard locations
func FindConfigFile() string {
	home, _ := os.UserHomeDir()
	locations := []string{
		".igsaved.yaml",
		".igsaved.yml",
		filepath.Join(home, ".config", "igsaved", "config.yaml"),
		filepath.Join(home, ".config", "igsaved", "config.yml"),
		filepath.Join(home, ".igsaved.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// DefaultConfigPath is where `config init` writes when no path is given
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".igsaved.yaml"
	}
	return filepath.Join(home, ".config", "igsaved", "config.yaml")
}

// Validate checks if the configuration is valid. The session ID is not
// required here because it may come from the credential store or a prompt.
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.BaseURL == "" {
		errs = append(errs, errors.New("instagram base URL is required"))
	}
	if c.Instagram.Timeout <= 0 {
		errs = append(errs, errors.New("instagram timeout must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.LedgerFile == "" {
		errs = append(errs, errors.New("ledger file is required"))
	}
	switch strings.ToLower(c.Output.ArchiveMode) {
	case ArchiveNone, ArchiveFull, ArchiveMetadata:
	default:
		errs = append(errs, fmt.Errorf("invalid archive mode %q", c.Output.ArchiveMode))
	}

	if c.Download.Limit < 0 {
		errs = append(errs, errors.New("download limit cannot be negative"))
	}
	if c.Download.CheckpointEvery < 0 {
		errs = append(errs, errors.New("checkpoint interval cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if c.Watch.Interval < time.Minute {
		errs = append(errs, errors.New("watch interval must be at least one minute"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges explicitly set command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if sessionID, ok := flags["session-id"].(string); ok && sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if ledger, ok := flags["ledger"].(string); ok && ledger != "" {
		c.Output.LedgerFile = ledger
	}
	if mode, ok := flags["archive"].(string); ok && mode != "" {
		c.Output.ArchiveMode = mode
	}
	if collection, ok := flags["collection"].(string); ok && collection != "" {
		c.Download.Collection = collection
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Download.Limit = limit
	}
	if every, ok := flags["checkpoint-every"].(int); ok && every > 0 {
		c.Download.CheckpointEvery = every
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
	if interval, ok := flags["interval"].(time.Duration); ok && interval > 0 {
		c.Watch.Interval = interval
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment > .env file > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".igsaved.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
