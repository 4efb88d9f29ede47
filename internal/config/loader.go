package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides (SCROLLBACK_ENGINE_BLOCK_SIZE).
const envPrefix = "SCROLLBACK"

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// Set overrides a key with the highest precedence (used for CLI flags).
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the config file that was loaded.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load resolves the configuration, lowest precedence first:
// defaults, config file, SCROLLBACK_* env vars, Set overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setupViper(cfg)

	if err := l.readConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// Unmarshal drops env values for nested keys once a file is loaded.
	l.applyStringOverrides(cfg)
	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

// LoadDefault loads configuration with default search paths.
func LoadDefault() (*Config, error) {
	return NewLoader().Load()
}

// setting is one config key with its default.
type setting struct {
	key   string
	value any
}

// settings lists every key Viper knows about, seeded from cfg.
func settings(cfg *Config) []setting {
	e, m, t := cfg.Engine, cfg.Metrics, cfg.TUI
	return []setting{
		{"global.data_dir", cfg.Global.DataDir},
		{"global.config_dir", cfg.Global.ConfigDir},

		{"database.path", cfg.Database.Path},
		{"database.max_connections", cfg.Database.MaxConnections},
		{"database.busy_timeout_ms", cfg.Database.BusyTimeoutMs},

		{"logging.level", cfg.Logging.Level},
		{"logging.format", cfg.Logging.Format},
		{"logging.file", cfg.Logging.File},
		{"logging.enable_caller", cfg.Logging.EnableCaller},

		{"engine.block_size", e.BlockSize},
		{"engine.max_selected_items", e.MaxSelectedItems},
		{"engine.start_drag_distance", e.StartDragDistance},
		{"engine.double_click_interval", e.DoubleClickInterval},
		{"engine.autoscroll_interval", e.AutoscrollInterval},
		{"engine.autoscroll_edge", e.AutoscrollEdge},
		{"engine.autoscroll_step", e.AutoscrollStep},
		{"engine.heavy_unload_pages", e.HeavyUnloadPages},
		{"engine.date_hide_timeout", e.DateHideTimeout},
		{"engine.touch_deceleration", e.TouchDeceleration},
		{"engine.touch_tick_interval", e.TouchTickInterval},
		{"engine.cursor_step_budget", e.CursorStepBudget},
		{"engine.attach_window", e.AttachWindow},

		{"metrics.photo_size", m.PhotoSize},
		{"metrics.userpic_min_bottom_skip", m.UserpicMinBottomSkip},
		{"metrics.date_height", m.DateHeight},
		{"metrics.date_margin_top", m.DateMarginTop},

		{"tui.theme", t.Theme},
		{"tui.show_dates", t.ShowDates},
		{"tui.show_userpics", t.ShowUserpics},
		{"tui.time_format", t.TimeFormat},
	}
}

// envName maps database.path to SCROLLBACK_DATABASE_PATH.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (l *Loader) setupViper(cfg *Config) {
	v := l.v
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, "scrollback"))
	}
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "scrollback"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, s := range settings(cfg) {
		v.SetDefault(s.key, s.value)
		// Unmarshal only sees env vars for nested keys that are bound.
		_ = v.BindEnv(s.key, envName(s.key))
	}
	v.AutomaticEnv()
}

// readConfigFile reads the explicit file, or the first config.yaml on the
// search path. Only an explicit file is required to exist.
func (l *Loader) readConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}
	err := l.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && l.configFile == "" && errors.As(err, &notFound) {
		return nil
	}
	return err
}

// applyStringOverrides copies path and logging keys straight from Viper.
// Level and format only override when they differ from the defaults.
func (l *Loader) applyStringOverrides(cfg *Config) {
	defaults := DefaultConfig()
	overrides := []struct {
		key  string
		dst  *string
		skip string
	}{
		{"database.path", &cfg.Database.Path, ""},
		{"global.data_dir", &cfg.Global.DataDir, ""},
		{"global.config_dir", &cfg.Global.ConfigDir, ""},
		{"logging.level", &cfg.Logging.Level, defaults.Logging.Level},
		{"logging.format", &cfg.Logging.Format, defaults.Logging.Format},
		{"logging.file", &cfg.Logging.File, ""},
	}
	for _, o := range overrides {
		if value := l.v.GetString(o.key); value != "" && value != o.skip {
			*o.dst = value
		}
	}
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	switch {
	case path == "~":
		home, _ := os.UserHomeDir()
		return home
	case strings.HasPrefix(path, "~/"):
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func expandPaths(cfg *Config) {
	cfg.Global.DataDir = expandTilde(cfg.Global.DataDir)
	cfg.Global.ConfigDir = expandTilde(cfg.Global.ConfigDir)
	cfg.Database.Path = expandTilde(cfg.Database.Path)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
}
