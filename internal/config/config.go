package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	UITray = "tray"
	UITUI  = "tui"
)

type Config struct {
	LogLevel string         `json:"log_level" mapstructure:"log_level"`
	UI       string         `json:"ui" mapstructure:"ui"` // "tray" or "tui"
	Language string         `json:"language" mapstructure:"language"`
	Settings SettingsConfig `json:"settings" mapstructure:"settings"`
	Recorder RecorderConfig `json:"recorder" mapstructure:"recorder"`
	Overlay  OverlayConfig  `json:"overlay" mapstructure:"overlay"`

	path string
}

type SettingsConfig struct {
	Path string `json:"path" mapstructure:"path"` // SQLite database
}

type RecorderConfig struct {
	Command   string `json:"command" mapstructure:"command"`
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`
}

type OverlayConfig struct {
	DismissCommand string        `json:"dismiss_command" mapstructure:"dismiss_command"`
	Timeout        time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Load reads the config from the default location or returns defaults
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path. A missing file yields defaults.
// SCREENRECORD_* environment variables override file values.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("SCREENRECORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("ui", UITray)
	v.SetDefault("language", "")
	v.SetDefault("settings.path", filepath.Join(DataPath(), "settings.db"))
	v.SetDefault("recorder.command", "screenrecorder")
	v.SetDefault("recorder.output_dir", defaultOutputDir())
	v.SetDefault("overlay.dismiss_command", "")
	v.SetDefault("overlay.timeout", 3*time.Second)
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.UI {
	case UITray, UITUI:
	default:
		return fmt.Errorf("invalid ui %q: must be %q or %q", c.UI, UITray, UITUI)
	}
	if c.Overlay.Timeout <= 0 {
		return fmt.Errorf("overlay timeout must be positive, got %s", c.Overlay.Timeout)
	}
	if c.Settings.Path == "" {
		return fmt.Errorf("settings path cannot be empty")
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = Path()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Path returns the platform-specific config file path
func Path() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "screenrecord", "config.json")
}

// DataPath returns the platform-specific data directory path
func DataPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "screenrecord")
}

func defaultOutputDir() string {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("HOME"), "Movies", "Screen Recordings")
	}
	return filepath.Join(os.Getenv("HOME"), "Videos", "Screen Recordings")
}
