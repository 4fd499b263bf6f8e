// =============================================================================
// Business Search - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file and
// layers command line flags and BISEARCH_* environment variables on top.
//
// PRECEDENCE (highest first):
//   1. Command line flags
//   2. Environment variables (BISEARCH_OUTPUT_DIR, BISEARCH_SERVER_PORT, ...)
//   3. The YAML configuration file
//   4. Built-in defaults
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/business-search/internal/bands"
	"github.com/ginjaninja78/business-search/internal/validation"
)

// Defaults.
const (
	DefaultFileName  = "business-search-results"
	DefaultOutputDir = "./output"
	DefaultLogLevel  = "info"
	DefaultPort      = 8080
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// FileName is the base name of downloaded files, without extension.
	// Placeholders such as {date} and {uuid} are expanded at download time.
	// Default: "business-search-results"
	FileName string `yaml:"file_name" validate:"required"`

	// OutputDir is where the CLI writes downloads.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	Server ServerConfig `yaml:"server"`
	Export ExportConfig `yaml:"export"`

	// Bands replaces built-in band tables by name. Entry order is kept.
	Bands map[string]bands.Mapping `yaml:"bands"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Port is the listening port.
	// Default: 8080
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// AllowOrigin, when set, is sent as Access-Control-Allow-Origin.
	AllowOrigin string `yaml:"allow_origin"`
}

// ExportConfig holds download settings.
type ExportConfig struct {
	// FlattenReferences writes one row per VAT or PAYE reference.
	FlattenReferences bool `yaml:"flatten_references"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path. An empty path or a missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyOverrides copies every key set in v (by flag or environment) over
// the loaded values and validates the result.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	if v.IsSet("file_name") {
		c.FileName = v.GetString("file_name")
	}
	if v.IsSet("output_dir") {
		c.OutputDir = v.GetString("output_dir")
	}
	if v.IsSet("log_level") {
		c.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("server.port") {
		c.Server.Port = v.GetInt("server.port")
	}
	if v.IsSet("server.allow_origin") {
		c.Server.AllowOrigin = v.GetString("server.allow_origin")
	}
	if v.IsSet("export.flatten_references") {
		c.Export.FlattenReferences = v.GetBool("export.flatten_references")
	}
	return c.Validate()
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	return validation.Wrap(validation.Struct(c), "invalid configuration")
}

// BandRegistry builds the band tables with the configured overrides.
func (c *Config) BandRegistry() *bands.Registry {
	return bands.NewRegistry(c.Bands)
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
}
