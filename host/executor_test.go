package host_test

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/reglet-dev/wasm-core/domain/errors"
	"github.com/reglet-dev/wasm-core/host"
	"github.com/reglet-dev/wasm-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := host.NewExecutor(ctx)
	require.NoError(t, err)
	assert.Equal(t, host.DefaultConfig(), e.Config())
	assert.NoError(t, e.Close(ctx))
}

func TestNewExecutor_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		opt   host.Option
		field string
	}{
		{"zero memory pages", host.WithMemoryLimitPages(0), "MemoryLimitPages"},
		{"too many memory pages", host.WithMemoryLimitPages(65537), "MemoryLimitPages"},
		{"zero input limit", host.WithMaxInputBytes(0), "MaxInputBytes"},
		{"empty module name", host.WithModuleName(""), "ModuleName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := host.NewExecutor(context.Background(), tt.opt)
			require.Error(t, err)

			var cfgErr *errors.ConfigError
			require.True(t, stdErrors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNewExecutor_CompilationCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for range 2 {
		e, err := host.NewExecutor(ctx, host.WithCompilationCacheDir(dir))
		require.NoError(t, err)

		inst, err := e.Load(ctx, testutil.GuestModule())
		require.NoError(t, err)

		sum, err := inst.Add(ctx, 40, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(42), sum)
		require.NoError(t, e.Close(ctx))
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, host.DefaultConfig().Validate())
}

func TestLoad_MissingExports(t *testing.T) {
	ctx := context.Background()
	e, err := host.NewExecutor(ctx)
	require.NoError(t, err)
	defer e.Close(ctx) //nolint:errcheck

	_, err = e.Load(ctx, testutil.AddOnlyModule())
	require.Error(t, err)

	var exportErr *errors.ExportError
	require.True(t, stdErrors.As(err, &exportErr))
	assert.Equal(t, "memory", exportErr.Name)
	assert.True(t, exportErr.NotFound())
}

func TestLoad_InvalidModule(t *testing.T) {
	ctx := context.Background()
	e, err := host.NewExecutor(ctx)
	require.NoError(t, err)
	defer e.Close(ctx) //nolint:errcheck

	_, err = e.Load(ctx, []byte("not wasm"))
	assert.ErrorContains(t, err, "failed to compile module")
}

func TestLoad_DistinctInstances(t *testing.T) {
	ctx := context.Background()
	e, err := host.NewExecutor(ctx, host.WithModuleName("guest"))
	require.NoError(t, err)
	defer e.Close(ctx) //nolint:errcheck

	first, err := e.Load(ctx, testutil.GuestModule())
	require.NoError(t, err)
	second, err := e.Load(ctx, testutil.GuestModule())
	require.NoError(t, err)

	assert.Equal(t, "guest-1", first.Name())
	assert.Equal(t, "guest-2", second.Name())

	require.NoError(t, first.Close(ctx))
	got, err := second.Hello(ctx, "still here")
	require.NoError(t, err)
	assert.Equal(t, "Hello, still here from Go!", got)
}
