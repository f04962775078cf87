// Package config provides configuration management for catqa.
// Configuration is an explicit, immutable value passed into the analysis
// driver; there is no process-wide mutable state.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/catqa/catqa/internal/model"
	"github.com/catqa/catqa/pkg/analyze"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// Config holds all catqa configuration.
type Config struct {
	Version int `yaml:"version"`

	Columns    ColumnsConfig    `yaml:"columns"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`

	// Weights maps the four component names to their score shares.
	Weights map[string]float64 `yaml:"weights"`

	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ColumnsConfig names the column roles. Empty values are auto-inferred;
// explicit values always win over inference.
type ColumnsConfig struct {
	ProductID   string   `yaml:"product_id"`
	Description string   `yaml:"description"`
	Codes       []string `yaml:"codes"`
}

// ThresholdsConfig holds the analysis thresholds.
type ThresholdsConfig struct {
	MinDescriptionLength int     `yaml:"min_description_length"`
	MinTrainingSamples   int     `yaml:"min_training_samples"`
	RareCodeThreshold    float64 `yaml:"rare_code_threshold"`
}

// ServerConfig for the HTTP API.
type ServerConfig struct {
	Port          int    `yaml:"port"`
	Host          string `yaml:"host"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TelemetryConfig for optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Thresholds: ThresholdsConfig{
			MinDescriptionLength: 20,
			MinTrainingSamples:   50,
			RareCodeThreshold:    0.005,
		},
		Weights: analyze.DefaultParams().Weights,
		Server: ServerConfig{
			Port:          8080,
			Host:          "localhost",
			MaxUploadSize: 500 << 20,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
	}
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, qaerrors.Wrap(err, qaerrors.CodeFileNotFound, "failed to read config").
				WithContext("path", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to parse config").
				WithContext("path", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from CATQA_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("CATQA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CATQA_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("CATQA_TELEMETRY_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
}

// Validate checks thresholds and the weight mapping. Weight violations
// are configuration errors, reported before any analysis starts.
func (c *Config) Validate() error {
	if c.Thresholds.MinDescriptionLength < 0 {
		return qaerrors.Configuration("min_description_length must be non-negative")
	}
	if c.Thresholds.MinTrainingSamples < 1 {
		return qaerrors.Configuration("min_training_samples must be positive")
	}
	if c.Thresholds.RareCodeThreshold < 0 || c.Thresholds.RareCodeThreshold > 1 {
		return qaerrors.Configuration(
			fmt.Sprintf("rare_code_threshold must be a fraction in [0,1], got %g", c.Thresholds.RareCodeThreshold))
	}
	return analyze.ValidateWeights(c.Weights)
}

// Params converts the configuration into analysis parameters.
func (c *Config) Params() analyze.Params {
	return analyze.Params{
		MinDescriptionLength: c.Thresholds.MinDescriptionLength,
		MinTrainingSamples:   c.Thresholds.MinTrainingSamples,
		RareCodeThreshold:    c.Thresholds.RareCodeThreshold,
		Weights:              c.Weights,
	}
}

// Roles returns the explicitly configured column roles. Unset roles are
// resolved against the dataset columns by the caller.
func (c *Config) Roles() model.Roles {
	return model.Roles{
		ID:          c.Columns.ProductID,
		Description: c.Columns.Description,
		Codes:       c.Columns.Codes,
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to marshal config")
	}
	return os.WriteFile(path, data, 0o644)
}
