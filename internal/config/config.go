// Package config reads process configuration from SWITCHBOARD_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/aretw0/switchboard/internal/logging"
)

// Prefix is the environment prefix of every setting.
const Prefix = "SWITCHBOARD"

// Config holds the settings shared by the CLI commands.
// Command-line flags take precedence; see Override.
type Config struct {
	Addr         string   `envconfig:"ADDR" default:":8080"`
	Intents      []string `envconfig:"INTENTS"`
	LogLevel     string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"LOG_FORMAT" default:"text"`
	Threshold    float64  `envconfig:"THRESHOLD" default:"0.7"`
	MaxInputSize int      `envconfig:"MAX_INPUT_SIZE" default:"4096"`
	Metrics      bool     `envconfig:"METRICS" default:"true"`
	MaskKeys     []string `envconfig:"MASK_KEYS"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and the log level name.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("config: threshold must be in (0, 1], got %v", c.Threshold)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("config: max input size must be positive, got %d", c.MaxInputSize)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, ok := logging.ParseFormat(c.LogFormat); !ok {
		return fmt.Errorf("config: invalid log format %q (text or json)", c.LogFormat)
	}
	return nil
}

// Format returns the parsed LogFormat.
func (c *Config) Format() logging.Format {
	f, _ := logging.ParseFormat(c.LogFormat)
	return f
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Usage writes the supported variables, e.g. for --help output.
func Usage() string {
	var b strings.Builder
	_ = envconfig.Usagef(Prefix, &Config{}, &b, "{{range .}}  {{usage_key .}}\t{{usage_type .}}\t{{usage_default .}}\n{{end}}")
	return b.String()
}
