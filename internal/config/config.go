// Package config loads the countme CLI configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "COUNTME_"

// ConfigFileEnv names the environment variable holding an optional YAML file path.
const ConfigFileEnv = EnvPrefix + "CONFIG_FILE"

// Report formats.
const (
	ReportTable = "table"
	ReportLog   = "log"
)

// Config holds all runtime configuration.
type Config struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Workload
	Workers    int `koanf:"workers"`
	Iterations int `koanf:"iterations"`

	// Reporting
	ReportFormat string `koanf:"report_format"`
	ReportOnExit bool   `koanf:"report_on_exit"`
	MetricsAddr  string `koanf:"metrics_addr"` // "" = disabled
}

// defaults is the lowest-priority layer.
var defaults = map[string]any{
	"log_level":      "info",
	"log_format":     "json",
	"workers":        5,
	"iterations":     100_000,
	"report_format":  ReportTable,
	"report_on_exit": true,
	"metrics_addr":   "",
}

// Load reads configuration from (lowest → highest priority):
//  1. Built-in defaults
//  2. YAML file at COUNTME_CONFIG_FILE (if set)
//  3. COUNTME_* environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if cfgFile := os.Getenv(ConfigFileEnv); cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", cfgFile, err)
		}
	}

	// "COUNTME_LOG_LEVEL" → "log_level"
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		if s == ConfigFileEnv {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.LogLevel = strings.TrimSpace(strings.ToLower(cfg.LogLevel))
	cfg.LogFormat = strings.TrimSpace(strings.ToLower(cfg.LogFormat))
	cfg.ReportFormat = strings.TrimSpace(strings.ToLower(cfg.ReportFormat))
	cfg.MetricsAddr = strings.TrimSpace(cfg.MetricsAddr)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []string

	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "COUNTME_LOG_LEVEL must be one of trace, debug, info, warn, error")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, "COUNTME_LOG_FORMAT must be json or text")
	}
	if c.Workers < 1 || c.Workers > 1024 {
		errs = append(errs, "COUNTME_WORKERS must be between 1 and 1024")
	}
	if c.Iterations < 1 {
		errs = append(errs, "COUNTME_ITERATIONS must be at least 1")
	}
	if c.ReportFormat != ReportTable && c.ReportFormat != ReportLog {
		errs = append(errs, "COUNTME_REPORT_FORMAT must be table or log")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d configuration error(s):\n  - %s", len(errs), strings.Join(errs, "\n  - "))
	}
	return nil
}
