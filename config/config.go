// Package config handles service configuration from a TOML file, defaults,
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// ScheduleConfig holds scheduling defaults applied when a request omits them.
type ScheduleConfig struct {
	TimezoneOffset int  `toml:"timezone_offset"` // hours east of UTC
	AllowFuture    bool `toml:"allow_future"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"` // ":memory:" for an in-memory database
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Schedule: ScheduleConfig{TimezoneOffset: 0, AllowFuture: true},
		Storage:  StorageConfig{DBPath: "shifts.db"},
	}
}

// Load loads configuration from the given path, merging with defaults and
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHIFT_ENGINE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SHIFT_ENGINE_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("SHIFT_ENGINE_TZ_OFFSET"); v != "" {
		if off, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.TimezoneOffset = off
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Server.Port)
	}
	if c.Schedule.TimezoneOffset < -12 || c.Schedule.TimezoneOffset > 14 {
		return fmt.Errorf("timezone_offset out of range: %d", c.Schedule.TimezoneOffset)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("db_path must be set")
	}
	return nil
}
