package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/reglet-dev/wasm-core/domain/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Exports every guest must provide.
var requiredExports = []string{exportAllocate, exportDeallocate, exportAdd, exportSumF32, exportHello}

const (
	exportMemory     = "memory"
	exportAllocate   = "allocate"
	exportDeallocate = "deallocate"
	exportAdd        = "add"
	exportSumF32     = "sum_f32"
	exportHello      = "hello"
	exportDescribe   = "describe"
	exportSchema     = "schema"
	exportInitialize = "_initialize"
)

// Executor manages a wazero runtime that hosts wasm-core guests.
type Executor struct {
	runtime wazero.Runtime
	cache   wazero.CompilationCache
	logger  *slog.Logger
	config  Config
	seq     atomic.Uint64
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	rtConfig := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(e.config.MemoryLimitPages).
		WithCloseOnContextDone(e.config.CloseOnContextDone)

	if e.config.CompilationCacheDir != "" {
		cache, err := wazero.NewCompilationCacheWithDir(e.config.CompilationCacheDir)
		if err != nil {
			return nil, &errors.ConfigError{Field: "CompilationCacheDir", Err: err}
		}
		e.cache = cache
		rtConfig = rtConfig.WithCompilationCache(cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	e.runtime = rt

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = e.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	if err := e.registerHostModule(ctx); err != nil {
		_ = e.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// Config returns the effective configuration.
func (e *Executor) Config() Config {
	return e.config
}

// Close releases the runtime, every instance loaded from it, and the
// compilation cache.
func (e *Executor) Close(ctx context.Context) error {
	err := e.runtime.Close(ctx)
	if e.cache != nil {
		if cerr := e.cache.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}

// Load compiles and instantiates a guest module and checks its exports.
func (e *Executor) Load(ctx context.Context, wasmBytes []byte) (*Instance, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	name := fmt.Sprintf("%s-%d", e.config.ModuleName, e.seq.Add(1))
	modConfig := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions().
		WithStdout(os.Stderr).
		WithStderr(os.Stderr)

	mod, err := e.runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	// Go reactors (-buildmode=c-shared) initialise the runtime here.
	if init := mod.ExportedFunction(exportInitialize); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, &errors.ExportError{Name: exportInitialize, Err: err}
		}
	}

	inst, err := newInstance(mod, e.config.MaxInputBytes)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}

	e.logger.DebugContext(ctx, "wazero: guest loaded", "module", name)
	return inst, nil
}
