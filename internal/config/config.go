// Package config loads dicebag settings from defaults, an optional YAML
// file and DICEBAG_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/chosenoffset/dicebag/pkg/dicebag"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DICEBAG_"

// Config holds all dicebag configuration.
type Config struct {
	// Addr is the dashboard listen address.
	Addr string `yaml:"addr" env:"ADDR"`
	// Seed fixes the random generator; 0 draws a fresh seed.
	Seed int64 `yaml:"seed" env:"SEED"`

	Logging LoggingConfig `yaml:"logging"`

	HistorySize int `yaml:"history_size" env:"HISTORY_SIZE"`
	MaxClients  int `yaml:"max_clients" env:"MAX_CLIENTS"`

	Limits LimitsConfig `yaml:"limits" envPrefix:"LIMIT_"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json, console
}

// LimitsConfig mirrors dicebag.Limits.
type LimitsConfig struct {
	MaxNotationLength int `yaml:"max_notation_length" env:"NOTATION_LENGTH"`
	MaxNodes          int `yaml:"max_nodes" env:"NODES"`
	MaxQuantity       int `yaml:"max_quantity" env:"QUANTITY"`
	MaxSides          int `yaml:"max_sides" env:"SIDES"`
}

// Default returns the built-in configuration.
func Default() *Config {
	limits := dicebag.DefaultLimits()
	return &Config{
		Addr: "localhost:9090",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		HistorySize: 1000,
		MaxClients:  100,
		Limits: LimitsConfig{
			MaxNotationLength: limits.MaxNotationLength,
			MaxNodes:          limits.MaxNodes,
			MaxQuantity:       limits.MaxQuantity,
			MaxSides:          limits.MaxSides,
		},
	}
}

// Load builds the configuration. An empty path skips the file; a path that
// does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine or server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.HistorySize <= 0 {
		errs = append(errs, fmt.Errorf("history_size must be positive, got %d", c.HistorySize))
	}
	if c.MaxClients <= 0 {
		errs = append(errs, fmt.Errorf("max_clients must be positive, got %d", c.MaxClients))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	l := c.Limits
	for name, v := range map[string]int{
		"limits.max_notation_length": l.MaxNotationLength,
		"limits.max_nodes":           l.MaxNodes,
		"limits.max_quantity":        l.MaxQuantity,
		"limits.max_sides":           l.MaxSides,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// EngineLimits converts the configured limits.
func (c *Config) EngineLimits() *dicebag.Limits {
	return &dicebag.Limits{
		MaxNotationLength: c.Limits.MaxNotationLength,
		MaxNodes:          c.Limits.MaxNodes,
		MaxQuantity:       c.Limits.MaxQuantity,
		MaxSides:          c.Limits.MaxSides,
	}
}
