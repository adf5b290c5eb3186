// Package config loads the bot configuration from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var ErrConfigFileNotFound = errors.New("could not find config file in any config path")

// Default cooldown durations in seconds, used when the config leaves them
// unset or sets them to a non-positive value.
const (
	DefaultCreateCooldownSeconds = 300
	DefaultNotifyCooldownSeconds = 120
)

// Config represents the entire application configuration.
type Config struct {
	Bot        BotConfig  `koanf:"bot"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Cooldowns  Cooldowns  `koanf:"cooldowns"`
	Debug      Debug      `koanf:"debug"`
}

// BotConfig contains Discord-related configuration.
type BotConfig struct {
	// Token for the Discord bot account.
	Token string `koanf:"token"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"db_name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	// Connection lifetime limits in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Cooldowns contains the per-user cooldown durations for gated commands.
type Cooldowns struct {
	// Seconds between group creations by the same user.
	CreateSeconds int `koanf:"create_seconds"`
	// Seconds between group pings by the same user.
	NotifySeconds int `koanf:"notify_seconds"`
}

// Debug contains logging configuration.
type Debug struct {
	// Zap level name ("debug", "info", "warn", "error").
	LogLevel string `koanf:"log_level"`
	// Directory for rotated log files; empty disables file logging.
	LogDir string `koanf:"log_dir"`
}

// LoadConfig loads the configuration from the first config.toml found in the
// search paths and returns it along with the path that was used.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		".",
		"config",
		homeDir + "/.pingcrew",
		"/etc/pingcrew",
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := path + "/config.toml"
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: config.toml", ErrConfigFileNotFound)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.applyDefaults()

	return &config, usedConfigPath, nil
}

// applyDefaults fills in fallback values for settings the config file may omit.
func (c *Config) applyDefaults() {
	if c.Cooldowns.CreateSeconds <= 0 {
		c.Cooldowns.CreateSeconds = DefaultCreateCooldownSeconds
	}

	if c.Cooldowns.NotifySeconds <= 0 {
		c.Cooldowns.NotifySeconds = DefaultNotifyCooldownSeconds
	}

	if c.PostgreSQL.Port == 0 {
		c.PostgreSQL.Port = 5432
	}

	if c.PostgreSQL.MaxOpenConns == 0 {
		c.PostgreSQL.MaxOpenConns = 4
	}

	if c.PostgreSQL.MaxIdleConns == 0 {
		c.PostgreSQL.MaxIdleConns = 4
	}

	if c.PostgreSQL.MaxLifetime == 0 {
		c.PostgreSQL.MaxLifetime = 10
	}

	if c.PostgreSQL.MaxIdleTime == 0 {
		c.PostgreSQL.MaxIdleTime = 10
	}

	if c.Debug.LogLevel == "" {
		c.Debug.LogLevel = "info"
	}
}
