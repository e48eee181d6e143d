// Package config loads oink's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Environment overrides.
const (
	EnvDBPath     = "OINK_DB_PATH"
	EnvLogLevel   = "OINK_LOG_LEVEL"
	EnvDaemonAddr = "OINK_DAEMON_ADDR"
)

// Config holds all oink configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Freezes    FreezeConfig     `toml:"freezes"`
	Reminders  ReminderConfig   `toml:"reminders"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath            string  `toml:"db_path,omitempty"`
	DefaultRewardRate float64 `toml:"default_reward_rate"`
}

// FreezeConfig holds streak freeze settings.
type FreezeConfig struct {
	Max int `toml:"max"`
}

// ReminderConfig holds the daily reminder schedule.
type ReminderConfig struct {
	Enabled bool `toml:"enabled"`
	Hour    int  `toml:"hour"`
	Minute  int  `toml:"minute"`
}

// DaemonConfig holds HTTP daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultRewardRate: 5.00,
		},
		Freezes: FreezeConfig{
			Max: 2,
		},
		Reminders: ReminderConfig{
			Hour: 20,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "oink")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "oink")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "oink")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "oink")
}

// DBPath returns the database location, honouring the config value.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return expandHome(c.General.DBPath)
	}
	return filepath.Join(DataDir(), "oink.db")
}

// RewardRate is the default reward rate as a decimal.
func (c Config) RewardRate() decimal.Decimal {
	return decimal.NewFromFloat(c.General.DefaultRewardRate).Round(2)
}

// Load reads .env and the config file, returning defaults if it doesn't
// exist. Environment overrides are applied last.
func Load() (Config, error) {
	LoadDotEnv()
	cfg, err := LoadFrom(ConfigPath())
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFrom reads the config at path over the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overlays OINK_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvDaemonAddr); v != "" {
		cfg.Daemon.Addr = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
