// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all adforge configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Pipeline Pipeline `yaml:"pipeline"`
	Log      Log      `yaml:"log"`
}

// Server holds backend connection settings.
type Server struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Pipeline holds generation pipeline display settings.
type Pipeline struct {
	// StageDwell is how long each pipeline stage stays active during the
	// animated progression. The total animation is the minimum time before
	// results are revealed, regardless of backend latency.
	StageDwell time.Duration `yaml:"stage_dwell"`
}

// Log holds session log settings.
type Log struct {
	File  string `yaml:"file"`  // Empty disables logging.
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: Server{
			URL:     "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Pipeline: Pipeline{
			StageDwell: 700 * time.Millisecond,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("config: server.url cannot be empty")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: server.url must be an absolute URL, got %q", c.Server.URL)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("config: server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Pipeline.StageDwell < 0 {
		return fmt.Errorf("config: pipeline.stage_dwell must be non-negative, got %v", c.Pipeline.StageDwell)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ADFORGE_SERVER, ADFORGE_TIMEOUT, ADFORGE_STAGE_DWELL,
// ADFORGE_LOG.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ADFORGE_SERVER"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("ADFORGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid ADFORGE_TIMEOUT %q: %w", v, err)
		}
		c.Server.Timeout = d
	}
	if v := os.Getenv("ADFORGE_STAGE_DWELL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid ADFORGE_STAGE_DWELL %q: %w", v, err)
		}
		c.Pipeline.StageDwell = d
	}
	if v := os.Getenv("ADFORGE_LOG"); v != "" {
		c.Log.File = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Server   *rawServer   `yaml:"server"`
	Pipeline *rawPipeline `yaml:"pipeline"`
	Log      *rawLog      `yaml:"log"`
}

type rawServer struct {
	URL     *string        `yaml:"url"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawPipeline struct {
	StageDwell *time.Duration `yaml:"stage_dwell"`
}

type rawLog struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Server != nil {
		if layer.Server.URL != nil {
			c.Server.URL = *layer.Server.URL
		}
		if layer.Server.Timeout != nil {
			c.Server.Timeout = *layer.Server.Timeout
		}
	}
	if layer.Pipeline != nil {
		if layer.Pipeline.StageDwell != nil {
			c.Pipeline.StageDwell = *layer.Pipeline.StageDwell
		}
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
	}
}
