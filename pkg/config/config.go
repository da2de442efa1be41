// Package config loads process configuration from a YAML file and
// DEUNGI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 4 << 20
	DefaultConcurrency  = 4
	DefaultPattern      = "*.txt"
)

// Server captures HTTP server configuration.
type Server struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Log captures logger configuration.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Analysis captures pipeline configuration.
type Analysis struct {
	// TaxonomyFile is an optional YAML file extending the built-in tables.
	TaxonomyFile string `yaml:"taxonomy_file"`

	// Concurrency bounds parallel documents in a batch.
	Concurrency int `yaml:"concurrency"`

	// EstimatedPrice is the default price estimate in won; 0 disables the
	// price-relative rules.
	EstimatedPrice int64 `yaml:"estimated_price"`
}

// Watch captures directory watcher configuration.
type Watch struct {
	Dir       string `yaml:"dir"`
	ReportDir string `yaml:"report_dir"`
	Pattern   string `yaml:"pattern"`
	StateFile string `yaml:"state_file"`
}

// Config is the full process configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Analysis Analysis `yaml:"analysis"`
	Watch    Watch    `yaml:"watch"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Analysis: Analysis{
			Concurrency: DefaultConcurrency,
		},
		Watch: Watch{
			Pattern: DefaultPattern,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := config.applyEnv(lookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides fields from DEUNGI_* variables.
func (config *Config) applyEnv(lookupEnv func(string) (string, bool)) error {
	stringVars := []struct {
		name   string
		target *string
	}{
		{"DEUNGI_ADDR", &config.Server.Addr},
		{"DEUNGI_LOG_LEVEL", &config.Log.Level},
		{"DEUNGI_LOG_FORMAT", &config.Log.Format},
		{"DEUNGI_TAXONOMY_FILE", &config.Analysis.TaxonomyFile},
		{"DEUNGI_WATCH_DIR", &config.Watch.Dir},
		{"DEUNGI_REPORT_DIR", &config.Watch.ReportDir},
		{"DEUNGI_WATCH_PATTERN", &config.Watch.Pattern},
		{"DEUNGI_STATE_FILE", &config.Watch.StateFile},
	}
	for _, stringVar := range stringVars {
		if value, ok := lookupEnv(stringVar.name); ok {
			*stringVar.target = strings.TrimSpace(value)
		}
	}

	int64Vars := []struct {
		name   string
		target *int64
	}{
		{"DEUNGI_MAX_BODY_BYTES", &config.Server.MaxBodyBytes},
		{"DEUNGI_ESTIMATED_PRICE", &config.Analysis.EstimatedPrice},
	}
	for _, int64Var := range int64Vars {
		value, ok := lookupEnv(int64Var.name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, int64Var.name, value)
		}
		*int64Var.target = parsed
	}

	if value, ok := lookupEnv("DEUNGI_CONCURRENCY"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: DEUNGI_CONCURRENCY=%q is not an integer", ErrInvalidConfig, value)
		}
		config.Analysis.Concurrency = parsed
	}

	return nil
}

// Validate checks field ranges and enumerations.
func (config *Config) Validate() error {
	if config.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be positive", ErrInvalidConfig)
	}
	if config.Analysis.Concurrency < 1 {
		return fmt.Errorf("%w: analysis.concurrency must be at least 1", ErrInvalidConfig)
	}
	if config.Analysis.EstimatedPrice < 0 {
		return fmt.Errorf("%w: analysis.estimated_price must not be negative", ErrInvalidConfig)
	}
	if _, err := config.Log.SlogLevel(); err != nil {
		return err
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, config.Log.Format)
	}
	if config.Watch.Pattern == "" {
		config.Watch.Pattern = DefaultPattern
	}
	return nil
}

// SlogLevel converts Level into a slog.Level.
func (log Log) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, log.Level)
}

// NewLogger builds a slog logger writing to w with the configured level
// and handler format.
func (log Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := log.SlogLevel()
	if err != nil {
		return nil, err
	}
	handlerOptions := &slog.HandlerOptions{Level: level}
	if log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOptions)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOptions)), nil
}

// ToYAML renders the configuration as YAML.
func (config *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(config)
}
