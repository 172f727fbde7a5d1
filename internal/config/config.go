// Package config loads the process configuration spec.md §6 names:
// data_path, log_level, and write_timeout_ms. Grounded on
// tphakala-birdnet-go's internal/config/config.go — the only repo in
// the retrieval pack that pairs Cobra with a config framework — with
// its config-file/env-var/default precedence generalized from that
// project's nested Settings struct to the three flat keys this
// service needs.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration for the nutrilog core.
type Config struct {
	// DataPath is where the Graph Store's SQLite file lives.
	DataPath string

	// LogLevel is one of trace/debug/info/warn/error, per spec.md §6.
	// "trace" is accepted for vocabulary compatibility but maps to
	// slog's Debug level since slog has no trace level.
	LogLevel string

	// WriteTimeout is loaded from write_timeout_ms and must be positive.
	// No store operation applies it: write transactions run without a
	// deadline.
	WriteTimeout time.Duration
}

const envPrefix = "NUTRILOG"

// Load reads configuration from an optional config file, environment
// variables prefixed NUTRILOG_, and flags already bound to v, falling
// back to spec.md §6's defaults. configFile may be empty.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetDefault("data_path", filepath.Join("data", "nutrilog.db"))
	v.SetDefault("log_level", "info")
	v.SetDefault("write_timeout_ms", 5000)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		DataPath:     v.GetString("data_path"),
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		WriteTimeout: time.Duration(v.GetInt("write_timeout_ms")) * time.Millisecond,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unrecognized level %q", c.LogLevel)
	}
	if c.DataPath == "" {
		return fmt.Errorf("data_path: must not be empty")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout_ms: must be positive")
	}
	return nil
}
