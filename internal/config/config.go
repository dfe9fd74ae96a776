// Package config resolves runtime settings from defaults, an optional YAML
// file and SIMPLR_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/baiirun/simplrtask/internal/db"
)

// EnvPrefix prefixes every environment override, e.g. SIMPLR_LOG_LEVEL.
const EnvPrefix = "SIMPLR"

type Config struct {
	DataPath string      `mapstructure:"data_path" yaml:"data_path"`
	Log      LogConfig   `mapstructure:"log" yaml:"log"`
	Watch    WatchConfig `mapstructure:"watch" yaml:"watch"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"` // empty disables file logging
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

type WatchConfig struct {
	// Interval between checks for writes made by other processes.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataPath: defaultDataPath(),
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
		Watch: WatchConfig{
			Interval: 500 * time.Millisecond,
		},
	}
}

// defaultDataPath is db.DefaultPath, relative to the working directory when
// there is no home directory.
func defaultDataPath() string {
	path, err := db.DefaultPath()
	if err != nil {
		return filepath.Join(".simplr", "simplr.db")
	}
	return path
}

// DefaultPath returns ~/.simplr/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".simplr", "config.yaml")
}

// Load resolves the configuration. An empty path means DefaultPath, which
// may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DataPath = expandHome(cfg.DataPath)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data_path", cfg.DataPath)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
	v.SetDefault("watch.interval", cfg.Watch.Interval)
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return errors.New("config: data_path must not be empty")
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("config: invalid log.level %q (use debug, info, warn or error)", c.Log.Level)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("config: watch.interval must be positive, got %s", c.Watch.Interval)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML, creating parent
// directories as needed.
func WriteDefault(path string) error {
	b, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	content := append([]byte("# simplr configuration\n"), b...)
	return os.WriteFile(path, content, 0644)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
