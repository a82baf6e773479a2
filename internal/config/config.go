// Package config provides centralized configuration management using Viper.
package config

import (
	stdErrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/wasm-core/domain/errors"
	"github.com/reglet-dev/wasm-core/host"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WASMCORE_NATS_URL.
const EnvPrefix = "WASMCORE"

// Config holds all configuration values for wasmcore.
type Config struct {
	LogLevel string      `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	Output   string      `mapstructure:"output" yaml:"output" validate:"oneof=text json yaml"`
	Wasm     string      `mapstructure:"wasm" yaml:"wasm"`
	NATS     NATSConfig  `mapstructure:"nats" yaml:"nats"`
	Host     host.Config `mapstructure:"host" yaml:"host"`
}

// NATSConfig configures the request/reply service.
type NATSConfig struct {
	URL           string `mapstructure:"url" yaml:"url" validate:"required"`
	SubjectPrefix string `mapstructure:"subject_prefix" yaml:"subject_prefix" validate:"required"`
	QueueGroup    string `mapstructure:"queue_group" yaml:"queue_group" validate:"required"`
}

// Option adjusts the Viper instance before the config is read.
type Option func(v *viper.Viper) error

// WithConfigFile reads path instead of the project config file. A missing
// explicit file is an error.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) error {
		if path == "" {
			return nil
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}
}

// WithFlag binds a command-line flag to key. The flag only wins when set.
func WithFlag(key string, flag *pflag.Flag) Option {
	return func(v *viper.Viper) error {
		if flag == nil {
			return nil
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding %s flag: %w", key, err)
		}
		return nil
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > config file > defaults
func Load(opts ...Option) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	hostDefaults := host.DefaultConfig()
	v.SetDefault("log_level", "info")
	v.SetDefault("output", "text")
	v.SetDefault("wasm", "")
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.subject_prefix", "wasmcore")
	v.SetDefault("nats.queue_group", "wasm-core")
	v.SetDefault("host.module_name", hostDefaults.ModuleName)
	v.SetDefault("host.compilation_cache_dir", hostDefaults.CompilationCacheDir)
	v.SetDefault("host.memory_limit_pages", hostDefaults.MemoryLimitPages)
	v.SetDefault("host.max_input_bytes", hostDefaults.MaxInputBytes)
	v.SetDefault("host.close_on_context_done", hostDefaults.CloseOnContextDone)

	// Setup ENV binding with WASMCORE_ prefix; nested keys use underscores.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fileExists(ProjectPath()) {
		v.SetConfigFile(ProjectPath())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config: %w", err)
		}
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks every field, including the nested host settings.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := strings.TrimPrefix(fieldErrs[0].Namespace(), "Config.")
		return &errors.ConfigError{Field: field, Err: fieldErrs[0]}
	}
	return &errors.ConfigError{Err: err}
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "wasmcore.yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
