/*
config.go - Server configuration

Loads YAML configuration with sensible defaults: a missing file means
"run with defaults", absent keys keep their default values, and explicit
values win. Validate catches the mistakes that would otherwise surface
as confusing runtime failures.
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	Port         int    `yaml:"port"`
	DatabasePath string `yaml:"database_path"`

	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// SchedulerConfig controls the background accrual poster.
type SchedulerConfig struct {
	Enabled              bool `yaml:"enabled"`
	CheckIntervalMinutes int  `yaml:"check_interval_minutes"`
}

// CheckInterval returns the poll interval as a duration.
func (s SchedulerConfig) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalMinutes) * time.Minute
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Port:         8080,
		DatabasePath: "leave.db",
		Scheduler: SchedulerConfig{
			Enabled:              true,
			CheckIntervalMinutes: 60,
		},
	}
}

// Load reads the configuration file at path. A missing file yields the
// defaults. Keys absent from the file keep their default values because
// the file is unmarshalled onto the default config.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// Validate checks the configuration for common issues.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: "port must be between 1 and 65535"}
	}
	if c.DatabasePath == "" {
		return &ValidationError{Field: "database_path", Message: "database path is required"}
	}
	if c.Scheduler.Enabled && c.Scheduler.CheckIntervalMinutes < 1 {
		return &ValidationError{Field: "scheduler.check_interval_minutes", Message: "check interval must be at least 1 minute"}
	}
	return nil
}
