// Package config loads caselight configuration via Viper: defaults, then an
// optional caselight.toml, then CASELIGHT_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/caselight/caselight/errors"
)

// Config is the caselight configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Signing SigningConfig `mapstructure:"signing"`
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`
}

// StoreConfig configures the content-addressed cache database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SigningConfig configures the export signer. SeedPath points at a file
// holding the 32-byte ed25519 seed in hex; empty disables signing.
type SigningConfig struct {
	SeedPath string `mapstructure:"seed_path"`
}

// ExportConfig configures export assembly defaults.
type ExportConfig struct {
	IncludePayload bool `mapstructure:"include_payload"`
}

// LogConfig configures logging output.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

var globalConfig *Config

// Load reads the configuration: defaults, project caselight.toml if present,
// environment overrides. Cached after first call.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := viper.New()
	v.SetEnvPrefix("CASELIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path, bypassing the
// cache and discovery.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "caselight.db")
	v.SetDefault("signing.seed_path", "")
	v.SetDefault("export.include_payload", false)
	v.SetDefault("log.json", false)
}

// findProjectConfig searches for caselight.toml by walking up the directory
// tree. Returns the first match, or empty string if none found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, "caselight.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
