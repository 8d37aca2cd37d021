// Package config loads fetch client settings from an optional YAML file and
// FETCH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is read when Load is given no path. It may be absent.
const DefaultFile = "fetch.yaml"

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore, e.g. FETCH_CLIENT__TIMEOUT=5s.
const EnvPrefix = "FETCH_"

type Config struct {
	Client     ClientConfig     `koanf:"client"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Decode     DecodeConfig     `koanf:"decode"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Storage    StorageConfig    `koanf:"storage"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Log        LogConfig        `koanf:"log"`
}

type ClientConfig struct {
	BaseURL   string            `koanf:"base_url"`
	Timeout   time.Duration     `koanf:"timeout"`
	UserAgent string            `koanf:"user_agent"`
	Headers   map[string]string `koanf:"headers"` // values may reference ${VAR}
	SafeDial  bool              `koanf:"safe_dial"`
	RequestID bool              `koanf:"request_id"`
	FileRoot  string            `koanf:"file_root"`
}

type ClassifierConfig struct {
	AcceptMin int `koanf:"accept_min"`
	AcceptMax int `koanf:"accept_max"`
}

type DecodeConfig struct {
	Format string `koanf:"format"` // json, yaml, raw
}

type PipelineConfig struct {
	Retain bool `koanf:"retain"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // none, memory, sqlite
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type TelemetryConfig struct {
	Tracing     bool   `koanf:"tracing"`
	MetricsFile string `koanf:"metrics_file"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

var defaults = map[string]any{
	"client.timeout":        "30s",
	"client.user_agent":     "polyglot-fetch/1.0",
	"classifier.accept_min": 200,
	"classifier.accept_max": 299,
	"decode.format":         "json",
	"pipeline.retain":       true,
	"storage.type":          "none",
	"storage.sqlite.path":   "fetch.db",
	"log.level":             "info",
	"log.format":            "text",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (or DefaultFile when path is empty), then applies
// environment overrides and defaults. An explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	name := path
	if name == "" {
		name = DefaultFile
	}
	if err := k.Load(file.Provider(name), yaml.Parser()); err != nil {
		if path != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", name, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for key, v := range defaults {
		if !k.Exists(key) {
			k.Set(key, v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Client.BaseURL = substituteEnvVars(cfg.Client.BaseURL)
	for h, v := range cfg.Client.Headers {
		cfg.Client.Headers[h] = substituteEnvVars(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Classifier.AcceptMin > c.Classifier.AcceptMax {
		return fmt.Errorf("classifier: accept_min %d is greater than accept_max %d",
			c.Classifier.AcceptMin, c.Classifier.AcceptMax)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client: negative timeout %s", c.Client.Timeout)
	}
	switch c.Decode.Format {
	case "json", "yaml", "yml", "raw", "text":
	default:
		return fmt.Errorf("decode: unsupported format %q", c.Decode.Format)
	}
	switch c.Storage.Type {
	case "none", "memory":
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return errors.New("storage: sqlite.path is required")
		}
	default:
		return fmt.Errorf("storage: unsupported type %q", c.Storage.Type)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log: unsupported format %q", c.Log.Format)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log: invalid level %q", l.Level)
	}
	return level, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
