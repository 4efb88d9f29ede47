// Package config handles scrollback configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for scrollback.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Engine tunables for the history view.
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`

	// Metrics are the fixed decoration sizes used by the enumerators.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is where scrollback stores its data (default: ~/.local/share/scrollback).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/scrollback).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// MaxConnections is the maximum number of database connections.
	MaxConnections int `yaml:"max_connections" mapstructure:"max_connections"`

	// BusyTimeout is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// EngineConfig contains history view tunables.
type EngineConfig struct {
	// BlockSize is the maximum number of items per block.
	BlockSize int `yaml:"block_size" mapstructure:"block_size"`

	// MaxSelectedItems caps whole-item selection.
	MaxSelectedItems int `yaml:"max_selected_items" mapstructure:"max_selected_items"`

	// StartDragDistance is the manhattan distance that upgrades a pending press.
	StartDragDistance int `yaml:"start_drag_distance" mapstructure:"start_drag_distance"`

	// DoubleClickInterval bounds the triple-click window.
	DoubleClickInterval time.Duration `yaml:"double_click_interval" mapstructure:"double_click_interval"`

	// AutoscrollInterval is the period of drag autoscroll ticks.
	AutoscrollInterval time.Duration `yaml:"autoscroll_interval" mapstructure:"autoscroll_interval"`

	// AutoscrollEdge is the distance from the viewport edge that starts autoscroll.
	AutoscrollEdge int `yaml:"autoscroll_edge" mapstructure:"autoscroll_edge"`

	// AutoscrollStep is the number of px scrolled per autoscroll tick.
	AutoscrollStep int `yaml:"autoscroll_step" mapstructure:"autoscroll_step"`

	// HeavyUnloadPages pads the visible range when evicting heavy resources.
	HeavyUnloadPages int `yaml:"heavy_unload_pages" mapstructure:"heavy_unload_pages"`

	// DateHideTimeout hides floating dates after scrolling stops.
	DateHideTimeout time.Duration `yaml:"date_hide_timeout" mapstructure:"date_hide_timeout"`

	// TouchDeceleration is the kinetic scroll deceleration in px per ms squared.
	TouchDeceleration float64 `yaml:"touch_deceleration" mapstructure:"touch_deceleration"`

	// TouchTickInterval is the period of kinetic scroll ticks.
	TouchTickInterval time.Duration `yaml:"touch_tick_interval" mapstructure:"touch_tick_interval"`

	// CursorStepBudget bounds linear stepping before a binary search.
	CursorStepBudget int `yaml:"cursor_step_budget" mapstructure:"cursor_step_budget"`

	// AttachWindow is the maximum gap between attached messages of one author.
	AttachWindow time.Duration `yaml:"attach_window" mapstructure:"attach_window"`
}

// MetricsConfig contains decoration sizes in px.
type MetricsConfig struct {
	PhotoSize            int `yaml:"photo_size" mapstructure:"photo_size"`
	UserpicMinBottomSkip int `yaml:"userpic_min_bottom_skip" mapstructure:"userpic_min_bottom_skip"`
	DateHeight           int `yaml:"date_height" mapstructure:"date_height"`
	DateMarginTop        int `yaml:"date_margin_top" mapstructure:"date_margin_top"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, dark, light).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowDates shows floating date pills.
	ShowDates bool `yaml:"show_dates" mapstructure:"show_dates"`

	// ShowUserpics shows author badges beside attached runs.
	ShowUserpics bool `yaml:"show_userpics" mapstructure:"show_userpics"`

	// TimeFormat is the Go layout used for message timestamps.
	TimeFormat string `yaml:"time_format" mapstructure:"time_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "scrollback"),
			ConfigDir: filepath.Join(homeDir, ".config", "scrollback"),
		},
		Database: DatabaseConfig{
			Path:           "", // Will be set to DataDir/scrollback.db
			MaxConnections: 4,
			BusyTimeoutMs:  5000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Engine: EngineConfig{
			BlockSize:           100,
			MaxSelectedItems:    100,
			StartDragDistance:   2,
			DoubleClickInterval: 400 * time.Millisecond,
			AutoscrollInterval:  15 * time.Millisecond,
			AutoscrollEdge:      2,
			AutoscrollStep:      1,
			HeavyUnloadPages:    2,
			DateHideTimeout:     time.Second,
			TouchDeceleration:   0.002,
			TouchTickInterval:   16 * time.Millisecond,
			CursorStepBudget:    64,
			AttachWindow:        15 * time.Minute,
		},
		Metrics: MetricsConfig{
			PhotoSize:            1,
			UserpicMinBottomSkip: 0,
			DateHeight:           1,
			DateMarginTop:        0,
		},
		TUI: TUIConfig{
			Theme:        "default",
			ShowDates:    true,
			ShowUserpics: true,
			TimeFormat:   "15:04",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be at least 1")
	}

	if c.Engine.BlockSize < 1 {
		return fmt.Errorf("engine.block_size must be at least 1")
	}
	if c.Engine.MaxSelectedItems < 1 {
		return fmt.Errorf("engine.max_selected_items must be at least 1")
	}
	if c.Engine.StartDragDistance < 0 {
		return fmt.Errorf("engine.start_drag_distance must not be negative")
	}
	if c.Engine.AutoscrollInterval < time.Millisecond {
		return fmt.Errorf("engine.autoscroll_interval must be at least 1ms")
	}
	if c.Engine.TouchTickInterval < time.Millisecond {
		return fmt.Errorf("engine.touch_tick_interval must be at least 1ms")
	}
	if c.Engine.TouchDeceleration <= 0 {
		return fmt.Errorf("engine.touch_deceleration must be positive")
	}
	if c.Engine.HeavyUnloadPages < 0 {
		return fmt.Errorf("engine.heavy_unload_pages must not be negative")
	}
	if c.Engine.CursorStepBudget < 1 {
		return fmt.Errorf("engine.cursor_step_budget must be at least 1")
	}

	if c.Metrics.PhotoSize < 0 || c.Metrics.DateHeight < 0 ||
		c.Metrics.DateMarginTop < 0 || c.Metrics.UserpicMinBottomSkip < 0 {
		return fmt.Errorf("metrics must not be negative")
	}

	switch c.TUI.Theme {
	case "default", "dark", "light":
	default:
		return fmt.Errorf("tui.theme must be one of default, dark, light")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "scrollback.db")
}
