// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for tetherd.
//
// Configuration comes from a single yaml file passed via the --config
// flag. Every field has a usable default, so running without a config
// file is supported; flags override file values. There is no automatic
// discovery and environment variables never override config values.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tetherlock/tetherlock/lib/ipc"
)

// Config is the tetherd daemon configuration.
type Config struct {
	// SocketPath is the Unix socket the control server binds.
	// Default: /run/tetherd.sock
	SocketPath string `yaml:"socket_path"`

	// PollInterval bounds each hotplug event pump, and therefore the
	// worst-case latency between a severe command and a watcher
	// noticing its flags. A Go duration string. Default: 250ms
	PollInterval string `yaml:"poll_interval"`

	// LoginctlPath is the session manager binary used to enumerate and
	// lock sessions. Default: loginctl (resolved through PATH)
	LoginctlPath string `yaml:"loginctl_path"`

	// LogLevel is one of debug, info, warn, error. Default: info
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SocketPath:   ipc.DefaultSocketPath,
		PollInterval: "250ms",
		LoginctlPath: "loginctl",
		LogLevel:     "info",
	}
}

// LoadFile loads configuration from path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.SocketPath == "" {
		errs = append(errs, fmt.Errorf("socket_path is required"))
	}
	if _, err := c.PollIntervalDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.LoginctlPath == "" {
		errs = append(errs, fmt.Errorf("loginctl_path is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// PollIntervalDuration parses the configured poll interval.
func (c *Config) PollIntervalDuration() (time.Duration, error) {
	interval, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("poll_interval: %w", err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive, got %v", interval)
	}
	return interval, nil
}

// SlogLevel maps the configured log level name onto slog's levels.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
}
