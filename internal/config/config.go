// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"price-list/internal/errors"
	"price-list/internal/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PRICELIST"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains price book settings
	Pricing PricingConfig `json:"pricing"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Catalog lists the price book files or directories to load
	Catalog []string `json:"catalog"`

	// DefaultList is used when a request names no price list
	DefaultList string `json:"default_list"`

	// DisplayPlaces rounds displayed prices; -1 shows exact values
	DisplayPlaces int32 `json:"display_places" validate:"gte=-1,lte=28"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" validate:"required"`

	// ReadTimeoutSeconds bounds reading a request
	ReadTimeoutSeconds int `json:"read_timeout_seconds" validate:"gte=0"`

	// WriteTimeoutSeconds bounds writing a response
	WriteTimeoutSeconds int `json:"write_timeout_seconds" validate:"gte=0"`

	// ShutdownTimeoutSeconds bounds graceful shutdown
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" validate:"gte=0"`
}

// ReadTimeout returns the read timeout as a duration
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" validate:"oneof=cli json"`

	// NoColor disables ANSI colors in CLI output
	NoColor bool `json:"no_color"`
}

// envOverrides mirrors the settings that may come from the environment,
// read as PRICELIST_<FIELD_NAME>. Unset variables leave the pointer nil.
type envOverrides struct {
	Catalog       []string `split_words:"true"`
	DefaultList   *string  `split_words:"true"`
	DisplayPlaces *int32   `split_words:"true"`
	Addr          *string  `split_words:"true"`
	LogLevel      *string  `split_words:"true"`
	LogFormat     *string  `split_words:"true"`
	Format        *string  `split_words:"true"`
	NoColor       *bool    `split_words:"true"`
}

// DefaultPath returns the config file used when none is given
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".price-list.json")
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Catalog:       []string{"pricebook"},
			DisplayPlaces: -1,
		},
		Server: ServerConfig{
			Addr:                   ":8080",
			ReadTimeoutSeconds:     15,
			WriteTimeoutSeconds:    15,
			ShutdownTimeoutSeconds: 10,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, errors.Wrapf(errors.TypeConfig, err, "failed to read config %s", path)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "failed to parse config %s", path)
	}
	return config, nil
}

// LoadWithEnv loads the file, applies PRICELIST_* overrides and validates
// the result.
func LoadWithEnv(path string) (*Config, error) {
	config, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overlays environment variables onto c
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(errors.TypeConfig, "invalid environment override", err)
	}

	if len(env.Catalog) > 0 {
		c.Pricing.Catalog = env.Catalog
	}
	if env.DefaultList != nil {
		c.Pricing.DefaultList = *env.DefaultList
	}
	if env.DisplayPlaces != nil {
		c.Pricing.DisplayPlaces = *env.DisplayPlaces
	}
	if env.Addr != nil {
		c.Server.Addr = *env.Addr
	}
	if env.LogLevel != nil {
		c.Logging.Level = *env.LogLevel
	}
	if env.LogFormat != nil {
		c.Logging.Format = *env.LogFormat
	}
	if env.Format != nil {
		c.Output.DefaultFormat = *env.Format
	}
	if env.NoColor != nil {
		c.Output.NoColor = *env.NoColor
	}
	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.TypeConfig, "invalid configuration", err)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
