package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/loganalyzer/rtlog/pkg/highlighter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName   = "rtlog"
	envPrefix = "RTLOG"
)

// Config represents the application configuration
type Config struct {
	UI          UIConfig          `mapstructure:"ui" yaml:"ui"`
	Ingest      IngestConfig      `mapstructure:"ingest" yaml:"ingest"`
	Alerts      AlertsConfig      `mapstructure:"alerts" yaml:"alerts"`
	Stats       StatsConfig       `mapstructure:"stats" yaml:"stats"`
	Keybindings map[string]string `mapstructure:"keybindings" yaml:"keybindings"`
	General     GeneralConfig     `mapstructure:"general" yaml:"general"`
}

// UIConfig represents UI-specific configuration
type UIConfig struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	FrameIntervalMs int    `mapstructure:"frame_interval_ms" yaml:"frame_interval_ms"`
	IdleSleepMs     int    `mapstructure:"idle_sleep_ms" yaml:"idle_sleep_ms"`
	ContextLines    int    `mapstructure:"context_lines" yaml:"context_lines"`
	PageSize        int    `mapstructure:"page_size" yaml:"page_size"`
}

// IngestConfig controls how sources are discovered and tailed
type IngestConfig struct {
	Follow         bool `mapstructure:"follow" yaml:"follow"`
	Recursive      bool `mapstructure:"recursive" yaml:"recursive"`
	QueueCapacity  int  `mapstructure:"queue_capacity" yaml:"queue_capacity"`
	PollIntervalMs int  `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// AlertsConfig lists the patterns that raise the alert banner
type AlertsConfig struct {
	Patterns  []string `mapstructure:"patterns" yaml:"patterns"`
	Disabled  bool     `mapstructure:"disabled" yaml:"disabled"`
	DisplayMs int      `mapstructure:"display_ms" yaml:"display_ms"`
	BlinkMs   int      `mapstructure:"blink_ms" yaml:"blink_ms"`
}

// StatsConfig sizes the rolling statistics window
type StatsConfig struct {
	WindowSeconds int `mapstructure:"window_seconds" yaml:"window_seconds"`
}

// GeneralConfig represents general application settings
type GeneralConfig struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Theme:           "dark",
			FrameIntervalMs: 33, // ~30fps
			IdleSleepMs:     10,
			ContextLines:    3,
			PageSize:        10,
		},
		Ingest: IngestConfig{
			Follow:         false,
			Recursive:      false,
			QueueCapacity:  1024,
			PollIntervalMs: 200,
		},
		Alerts: AlertsConfig{
			Patterns:  []string{"ERROR", "FATAL"},
			Disabled:  false,
			DisplayMs: 5000,
			BlinkMs:   1500,
		},
		Stats: StatsConfig{
			WindowSeconds: 60,
		},
		Keybindings: map[string]string{
			"quit":           "q",
			"scroll_up":      "up",
			"scroll_down":    "down",
			"page_up":        "pgup",
			"page_down":      "pgdown",
			"goto_top":       "home",
			"goto_bottom":    "end",
			"toggle_auto":    "space",
			"filter_panel":   "/",
			"search":         "?",
			"toggle_context": "enter",
			"select_up":      "k",
			"select_down":    "j",
			"next_match":     "n",
			"prev_match":     "N",
			"next_source":    "]",
			"prev_source":    "[",
			"focus_switch":   "tab",
			"delete_filter":  "d",
			"toggle_regex":   "alt+r",
			"toggle_case":    "alt+i",
			"toggle_word":    "alt+w",
			"toggle_line":    "alt+x",
		},
		General: GeneralConfig{
			LogLevel: "info",
			LogFile:  "",
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, appName), nil
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Loader reads the configuration through its own viper instance and can
// watch the file it loaded for changes.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a loader for path. An empty path searches the default
// config directory and falls back to defaults when no file exists there.
func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	return &Loader{v: v, path: path}
}

// setDefaults registers every key so environment overrides apply to it.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("ui.theme", c.UI.Theme)
	v.SetDefault("ui.frame_interval_ms", c.UI.FrameIntervalMs)
	v.SetDefault("ui.idle_sleep_ms", c.UI.IdleSleepMs)
	v.SetDefault("ui.context_lines", c.UI.ContextLines)
	v.SetDefault("ui.page_size", c.UI.PageSize)

	v.SetDefault("ingest.follow", c.Ingest.Follow)
	v.SetDefault("ingest.recursive", c.Ingest.Recursive)
	v.SetDefault("ingest.queue_capacity", c.Ingest.QueueCapacity)
	v.SetDefault("ingest.poll_interval_ms", c.Ingest.PollIntervalMs)

	v.SetDefault("alerts.patterns", c.Alerts.Patterns)
	v.SetDefault("alerts.disabled", c.Alerts.Disabled)
	v.SetDefault("alerts.display_ms", c.Alerts.DisplayMs)
	v.SetDefault("alerts.blink_ms", c.Alerts.BlinkMs)

	v.SetDefault("stats.window_seconds", c.Stats.WindowSeconds)

	for action, key := range c.Keybindings {
		v.SetDefault("keybindings."+action, key)
	}

	v.SetDefault("general.log_level", c.General.LogLevel)
	v.SetDefault("general.log_file", c.General.LogFile)
}

// Load reads the config file, if any, and applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	config := &Config{}
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

// ConfigFile returns the file that was loaded, or "" when running on defaults.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the reloaded configuration whenever the loaded
// file changes. It returns false when no file was loaded.
func (l *Loader) Watch(onChange func(*Config)) bool {
	if l.ConfigFile() == "" {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		config, err := l.decode()
		if err != nil {
			log.WithFields(log.Fields{"path": e.Name, "err": err}).Warn("config reload failed")
			return
		}
		if err := config.Validate(); err != nil {
			log.WithFields(log.Fields{"path": e.Name, "err": err}).Warn("ignoring invalid config")
			return
		}
		log.WithField("path", e.Name).Info("config reloaded")
		onChange(config)
	})
	l.v.WatchConfig()
	return true
}

// Load loads the configuration from path, or from the default location
// when path is empty.
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to path as YAML, creating parent directories.
func Save(config *Config, path string) error {
	data, err := config.YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// YAML renders the configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// GetKeybinding returns the key binding for a given action
func (c *Config) GetKeybinding(action string) string {
	if binding, exists := c.Keybindings[action]; exists && binding != "" {
		return binding
	}
	// Return default if not found
	defaults := DefaultConfig()
	return defaults.Keybindings[action]
}

// Validate checks values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(highlighter.ThemeNames(), c.UI.Theme) {
		errs = append(errs, fmt.Errorf("ui.theme: unknown theme %q", c.UI.Theme))
	}
	positive := []struct {
		key   string
		value int
	}{
		{"ui.frame_interval_ms", c.UI.FrameIntervalMs},
		{"ui.idle_sleep_ms", c.UI.IdleSleepMs},
		{"ui.page_size", c.UI.PageSize},
		{"ingest.queue_capacity", c.Ingest.QueueCapacity},
		{"ingest.poll_interval_ms", c.Ingest.PollIntervalMs},
		{"alerts.display_ms", c.Alerts.DisplayMs},
		{"alerts.blink_ms", c.Alerts.BlinkMs},
		{"stats.window_seconds", c.Stats.WindowSeconds},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", p.key, p.value))
		}
	}
	if c.UI.ContextLines < 0 {
		errs = append(errs, fmt.Errorf("ui.context_lines: must not be negative, got %d", c.UI.ContextLines))
	}
	if _, err := log.ParseLevel(c.General.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("general.log_level: %w", err))
	}
	for i, p := range c.Alerts.Patterns {
		if p == "" {
			errs = append(errs, fmt.Errorf("alerts.patterns[%d]: empty pattern", i))
		}
	}
	return errors.Join(errs...)
}

// FrameInterval returns the minimum time between redraws.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.UI.FrameIntervalMs) * time.Millisecond
}

// IdleSleep returns how long the core loop sleeps when it has nothing to do.
func (c *Config) IdleSleep() time.Duration {
	return time.Duration(c.UI.IdleSleepMs) * time.Millisecond
}

// PollInterval returns the follow-mode poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Ingest.PollIntervalMs) * time.Millisecond
}

// AlertDisplay returns how long an alert stays visible.
func (c *Config) AlertDisplay() time.Duration {
	return time.Duration(c.Alerts.DisplayMs) * time.Millisecond
}

// AlertBlink returns how long an alert blinks after arming.
func (c *Config) AlertBlink() time.Duration {
	return time.Duration(c.Alerts.BlinkMs) * time.Millisecond
}
