package wasmcore

import "context"

// Operations is the call surface shared by every binding.
// Implementations must be safe for concurrent use.
type Operations interface {
	Add(ctx context.Context, a, b int32) (int32, error)
	SumF32(ctx context.Context, values []float32) (float32, error)
	Hello(ctx context.Context, name string) (string, error)
}

// Native runs the operations in the calling goroutine.
type Native struct{}

var _ Operations = Native{}

// Add implements Operations.
func (Native) Add(_ context.Context, a, b int32) (int32, error) {
	return Add(a, b), nil
}

// SumF32 implements Operations.
func (Native) SumF32(_ context.Context, values []float32) (float32, error) {
	return SumF32(values), nil
}

// Hello implements Operations.
func (Native) Hello(_ context.Context, name string) (string, error) {
	return Hello(name), nil
}
