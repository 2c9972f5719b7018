package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FeedsConfig lists the external feed sources to ingest from.
type FeedsConfig struct {
	Sources []string `toml:"sources"`
}

// ClassifierConfig holds the candidate label set for the remote classifier
// and the ordered keyword list for the local fallback.
type ClassifierConfig struct {
	Labels         []string `toml:"labels"`
	Keywords       []string `toml:"keywords"`
	Model          string   `toml:"model"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// EmailConfig holds SMTP settings and the default alert recipient. The
// password is not read from the config file, only from the environment.
type EmailConfig struct {
	Host             string `toml:"host"`
	Port             int    `toml:"port"`
	Username         string `toml:"username"`
	From             string `toml:"from"`
	DefaultRecipient string `toml:"default_recipient"`
}

// SchedulerConfig selects the scheduler mode, either "interval" or
// "disabled" for manual-trigger-only deployments.
type SchedulerConfig struct {
	Mode            string `toml:"mode"`
	IntervalSeconds int    `toml:"interval_seconds"`
}

type ServerConfig struct {
	Hostname string `toml:"hostname"`
	Port     int    `toml:"port"`
}

// DatabaseConfig selects the item/alert store implementation. Driver is
// "sqlite" (durable) or "memory" (ephemeral, for manual testing).
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// Config is the top-level TOML configuration.
type Config struct {
	Feeds      FeedsConfig      `toml:"feeds"`
	Classifier ClassifierConfig `toml:"classifier"`
	Email      EmailConfig      `toml:"email"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Classifier.Model == "" {
		c.Classifier.Model = "gemini-2.5-flash-lite"
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		c.Classifier.TimeoutSeconds = 10
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Scheduler.Mode == "" {
		c.Scheduler.Mode = "interval"
	}
	if c.Scheduler.IntervalSeconds <= 0 {
		c.Scheduler.IntervalSeconds = 300
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "varsler.db"
	}
}

// ClassifierTimeout returns the remote classifier timeout as a duration.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

// SchedulerInterval returns the fetch interval as a duration.
func (c *Config) SchedulerInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalSeconds) * time.Second
}
