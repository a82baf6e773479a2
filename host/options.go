package host

import (
	stdErrors "errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/wasm-core/domain/errors"
)

// HostModuleName is the import module the guest resolves log_message from.
const HostModuleName = "wasmcore_host"

const (
	// DefaultMemoryLimitPages caps guest memory at 256 MiB.
	DefaultMemoryLimitPages = 4096

	// DefaultMaxInputBytes is the largest payload written into the guest
	// for a single call.
	DefaultMaxInputBytes = 16 << 20

	// DefaultModuleName prefixes the names of instantiated guests.
	DefaultModuleName = "wasmcore"
)

var configValidator = validator.New()

// Config holds the executor settings.
type Config struct {
	// ModuleName prefixes each guest instance name; a sequence number keeps
	// instances in the same runtime distinct.
	ModuleName string `mapstructure:"module_name" yaml:"module_name" validate:"required"`

	// CompilationCacheDir enables wazero's on-disk compilation cache.
	CompilationCacheDir string `mapstructure:"compilation_cache_dir" yaml:"compilation_cache_dir"`

	// MemoryLimitPages bounds guest linear memory in 64 KiB pages.
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages" yaml:"memory_limit_pages" validate:"min=1,max=65536"`

	// MaxInputBytes bounds the size of a single input payload.
	MaxInputBytes int `mapstructure:"max_input_bytes" yaml:"max_input_bytes" validate:"min=1"`

	// CloseOnContextDone terminates running guest calls when their context
	// is cancelled.
	CloseOnContextDone bool `mapstructure:"close_on_context_done" yaml:"close_on_context_done"`
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{
		ModuleName:         DefaultModuleName,
		MemoryLimitPages:   DefaultMemoryLimitPages,
		MaxInputBytes:      DefaultMaxInputBytes,
		CloseOnContextDone: true,
	}
}

// Validate checks the configuration, reporting the first invalid field.
func (c Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &errors.ConfigError{Field: fieldErrs[0].Field(), Err: fieldErrs[0]}
	}
	return &errors.ConfigError{Err: err}
}

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(e *Executor) {
		e.config = cfg
	}
}

// WithLogger sets the logger receiving guest log records and executor
// diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMemoryLimitPages bounds guest memory.
func WithMemoryLimitPages(pages uint32) Option {
	return func(e *Executor) {
		e.config.MemoryLimitPages = pages
	}
}

// WithMaxInputBytes bounds a single input payload.
func WithMaxInputBytes(n int) Option {
	return func(e *Executor) {
		e.config.MaxInputBytes = n
	}
}

// WithCompilationCacheDir enables the on-disk compilation cache.
func WithCompilationCacheDir(dir string) Option {
	return func(e *Executor) {
		e.config.CompilationCacheDir = dir
	}
}

// WithCloseOnContextDone toggles termination of guest calls on cancellation.
func WithCloseOnContextDone(enabled bool) Option {
	return func(e *Executor) {
		e.config.CloseOnContextDone = enabled
	}
}

// WithModuleName sets the guest instance name prefix.
func WithModuleName(name string) Option {
	return func(e *Executor) {
		e.config.ModuleName = name
	}
}
