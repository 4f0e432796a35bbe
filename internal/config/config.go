// Package config loads build and query settings from defaults, an optional
// YAML file, RULES_EXPLORER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// RULES_EXPLORER_RULES_DIR or RULES_EXPLORER_LOG_LEVEL.
const EnvPrefix = "RULES_EXPLORER"

// Config holds all settings for the rules explorer tooling.
type Config struct {
	// RulesDir is the root searched recursively for rule files.
	RulesDir string `mapstructure:"rules_dir" validate:"required"`
	// OutputDir receives rules.json, index.json and manifest.json, and is
	// where the query commands read them from.
	OutputDir string `mapstructure:"output_dir" validate:"required"`
	// Workers bounds parallel rule normalization.
	Workers int `mapstructure:"workers" validate:"min=1,max=256"`
	// Version is stamped into the manifest. Empty derives one from git.
	Version string `mapstructure:"version"`

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
		Format string `mapstructure:"format" validate:"oneof=console json"`
	} `mapstructure:"log"`

	Metrics struct {
		// Textfile, when set, receives the batch metrics in Prometheus text
		// format after every build (node_exporter textfile collector).
		Textfile string `mapstructure:"textfile"`
	} `mapstructure:"metrics"`

	Watch struct {
		Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
	} `mapstructure:"watch"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("rules_dir", "rules")
	v.SetDefault("output_dir", "public/data")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("version", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("watch.debounce", 500*time.Millisecond)
}

// Load reads configuration into a validated Config. When file is empty,
// rulesexplorer.yaml is looked up in . and ./config and may be missing.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName("rulesexplorer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
