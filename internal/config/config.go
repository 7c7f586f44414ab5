// Package config handles parley configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for parley.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Timeline settings
	Timeline TimelineConfig `yaml:"timeline" mapstructure:"timeline"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global parley settings.
type GlobalConfig struct {
	// DataDir is where parley stores its data (default: ~/.local/share/parley).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// Sender is the local user's display name used when composing.
	Sender string `yaml:"sender" mapstructure:"sender"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeout is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. Required for debug logging while
	// the TUI owns the terminal.
	File string `yaml:"file" mapstructure:"file"`
}

// TimelineConfig contains timeline engine settings.
type TimelineConfig struct {
	// PageSize is how many messages one pagination request loads.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// ThrottleWindow coalesces scroll-driven pagination checks.
	ThrottleWindow time.Duration `yaml:"throttle_window" mapstructure:"throttle_window"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme selects the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// DefaultConfig returns a configuration populated with defaults.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Global: GlobalConfig{
			DataDir: dataDir,
			Sender:  defaultSender(),
		},
		Database: DatabaseConfig{
			Path:          filepath.Join(dataDir, "parley.db"),
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Timeline: TimelineConfig{
			PageSize:       50,
			ThrottleWindow: 100 * time.Millisecond,
		},
		TUI: TUIConfig{
			Theme: "default",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Timeline.PageSize <= 0 {
		return fmt.Errorf("timeline.page_size must be positive, got %d", c.Timeline.PageSize)
	}
	if c.Timeline.ThrottleWindow < 0 {
		return fmt.Errorf("timeline.throttle_window must not be negative")
	}
	switch c.TUI.Theme {
	case "default", "high-contrast":
	default:
		return fmt.Errorf("invalid tui.theme %q", c.TUI.Theme)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".parley"
	}
	return filepath.Join(home, ".local", "share", "parley")
}

func defaultSender() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "me"
}
