package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"sync"

	wasmcore "github.com/reglet-dev/wasm-core"
)

// ErrLoaderClosed is returned by a Loader closed before its first load.
var ErrLoaderClosed = stdErrors.New("host: loader closed")

// Source produces the bytes of a guest module.
type Source func(ctx context.Context) ([]byte, error)

// FileSource reads the guest module from path.
func FileSource(path string) Source {
	return func(context.Context) ([]byte, error) {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
		if err != nil {
			return nil, fmt.Errorf("failed to read wasm module: %w", err)
		}
		return data, nil
	}
}

// BytesSource serves an in-memory guest module.
func BytesSource(wasm []byte) Source {
	return func(context.Context) ([]byte, error) {
		return wasm, nil
	}
}

// Loader instantiates a guest on first use and shares it. A failed load is
// remembered and returned to every later caller.
type Loader struct {
	executor *Executor
	source   Source
	instance *Instance
	err      error
	once     sync.Once
}

var _ wasmcore.Operations = (*Loader)(nil)

// NewLoader creates a Loader over an executor and a module source.
func NewLoader(executor *Executor, source Source) *Loader {
	return &Loader{executor: executor, source: source}
}

// Instance returns the shared instance, loading it if needed.
func (l *Loader) Instance(ctx context.Context) (*Instance, error) {
	l.once.Do(func() {
		var wasm []byte
		wasm, l.err = l.source(ctx)
		if l.err != nil {
			return
		}
		l.instance, l.err = l.executor.Load(ctx, wasm)
	})
	return l.instance, l.err
}

// Add implements wasmcore.Operations.
func (l *Loader) Add(ctx context.Context, a, b int32) (int32, error) {
	inst, err := l.Instance(ctx)
	if err != nil {
		return 0, err
	}
	return inst.Add(ctx, a, b)
}

// SumF32 implements wasmcore.Operations.
func (l *Loader) SumF32(ctx context.Context, values []float32) (float32, error) {
	inst, err := l.Instance(ctx)
	if err != nil {
		return 0, err
	}
	return inst.SumF32(ctx, values)
}

// Hello implements wasmcore.Operations.
func (l *Loader) Hello(ctx context.Context, name string) (string, error) {
	inst, err := l.Instance(ctx)
	if err != nil {
		return "", err
	}
	return inst.Hello(ctx, name)
}

// Close closes the instance if one was loaded. The executor is left open.
func (l *Loader) Close(ctx context.Context) error {
	l.once.Do(func() {
		l.err = ErrLoaderClosed
	})
	if l.instance == nil {
		return nil
	}
	return l.instance.Close(ctx)
}
