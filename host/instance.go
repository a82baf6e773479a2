package host

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"sync"

	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/domain/entities"
	"github.com/reglet-dev/wasm-core/domain/errors"
	"github.com/reglet-dev/wasm-core/internal/abi"
	"github.com/tetratelabs/wazero/api"
)

var _ wasmcore.Operations = (*Instance)(nil)

// ErrNoOutput is returned when an export that always produces output returns
// a null result, which is how the guest signals a recovered failure.
var ErrNoOutput = stdErrors.New("export returned no output")

// Instance is an instantiated guest. It implements wasmcore.Operations by
// calling the guest exports. A wasm instance is single threaded, so calls
// are serialised.
type Instance struct {
	module     api.Module
	memory     api.Memory
	allocate   api.Function
	deallocate api.Function
	add        api.Function
	sumF32     api.Function
	hello      api.Function
	maxInput   int
	mu         sync.Mutex
}

func newInstance(mod api.Module, maxInput int) (*Instance, error) {
	memory := mod.ExportedMemory(exportMemory)
	if memory == nil {
		return nil, &errors.ExportError{Name: exportMemory}
	}
	for _, name := range requiredExports {
		if mod.ExportedFunction(name) == nil {
			return nil, &errors.ExportError{Name: name}
		}
	}
	return &Instance{
		module:     mod,
		memory:     memory,
		allocate:   mod.ExportedFunction(exportAllocate),
		deallocate: mod.ExportedFunction(exportDeallocate),
		add:        mod.ExportedFunction(exportAdd),
		sumF32:     mod.ExportedFunction(exportSumF32),
		hello:      mod.ExportedFunction(exportHello),
		maxInput:   maxInput,
	}, nil
}

// Name returns the module instance name.
func (i *Instance) Name() string {
	return i.module.Name()
}

// Add calls the guest's add export.
func (i *Instance) Add(ctx context.Context, a, b int32) (int32, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	results, err := i.add.Call(ctx, api.EncodeI32(a), api.EncodeI32(b))
	if err != nil {
		return 0, &errors.ExportError{Name: exportAdd, Err: err}
	}
	return api.DecodeI32(results[0]), nil
}

// SumF32 writes values as little-endian float32s into guest memory and calls
// sum_f32. The guest frees the buffer.
func (i *Instance) SumF32(ctx context.Context, values []float32) (float32, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	packed, err := i.writeInput(ctx, exportSumF32, abi.EncodeF32s(values))
	if err != nil {
		return 0, err
	}
	results, err := i.sumF32.Call(ctx, packed)
	if err != nil {
		return 0, &errors.ExportError{Name: exportSumF32, Err: err}
	}
	return api.DecodeF32(results[0]), nil
}

// Hello calls the guest's hello export and copies the greeting out of guest
// memory before releasing it.
func (i *Instance) Hello(ctx context.Context, name string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	packed, err := i.writeInput(ctx, exportHello, []byte(name))
	if err != nil {
		return "", err
	}
	results, err := i.hello.Call(ctx, packed)
	if err != nil {
		return "", &errors.ExportError{Name: exportHello, Err: err}
	}
	if results[0] == 0 {
		return "", &errors.ExportError{Name: exportHello, Err: ErrNoOutput}
	}
	out, err := i.readOutput(ctx, results[0])
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Describe calls the optional describe export.
func (i *Instance) Describe(ctx context.Context) (entities.Metadata, error) {
	var metadata entities.Metadata
	data, err := i.callOptional(ctx, exportDescribe)
	if err != nil {
		return metadata, err
	}
	if err := json.Unmarshal(data, &metadata); err != nil {
		return metadata, &errors.ExportError{Name: exportDescribe, Err: err}
	}
	return metadata, nil
}

// Schema calls the optional schema export and returns the raw JSON.
func (i *Instance) Schema(ctx context.Context) ([]byte, error) {
	return i.callOptional(ctx, exportSchema)
}

// Close releases the guest instance.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.module.Close(ctx)
}

func (i *Instance) callOptional(ctx context.Context, name string) ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	f := i.module.ExportedFunction(name)
	if f == nil {
		return nil, &errors.ExportError{Name: name}
	}
	results, err := f.Call(ctx)
	if err != nil {
		return nil, &errors.ExportError{Name: name, Err: err}
	}
	if results[0] == 0 {
		return nil, &errors.ExportError{Name: name, Err: ErrNoOutput}
	}
	return i.readOutput(ctx, results[0])
}

// writeInput copies data into a fresh guest allocation and returns the
// packed pointer. Empty input is passed as 0 without allocating.
func (i *Instance) writeInput(ctx context.Context, operation string, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if len(data) > i.maxInput {
		return 0, &errors.InputTooLargeError{Operation: operation, Size: len(data), Limit: i.maxInput}
	}

	length := uint32(len(data)) //nolint:gosec // G115: bounded by maxInput
	results, err := i.allocate.Call(ctx, uint64(length))
	if err != nil {
		return 0, &errors.MemoryError{Op: "allocate", Length: length, Err: err}
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if ptr == 0 {
		return 0, &errors.MemoryError{Op: "allocate", Length: length}
	}
	if !i.memory.Write(ptr, data) {
		return 0, &errors.MemoryError{Op: "write", Ptr: ptr, Length: length}
	}
	return abi.PackPtrLen(ptr, length), nil
}

// readOutput copies a guest-owned output buffer and hands it back to the
// guest allocator.
func (i *Instance) readOutput(ctx context.Context, packed uint64) ([]byte, error) {
	if packed == 0 {
		return []byte{}, nil
	}
	ptr, length, valid := splitPacked(packed)
	if !valid {
		return nil, &errors.MemoryError{Op: "read", Ptr: ptr, Length: length}
	}
	view, ok := i.memory.Read(ptr, length)
	if !ok {
		return nil, &errors.MemoryError{Op: "read", Ptr: ptr, Length: length}
	}
	out := make([]byte, length)
	copy(out, view)

	if _, err := i.deallocate.Call(ctx, uint64(ptr), uint64(length)); err != nil {
		return nil, &errors.MemoryError{Op: "deallocate", Ptr: ptr, Length: length, Err: err}
	}
	return out, nil
}

// splitPacked unpacks a guest-produced pointer without trusting it; a null
// pointer with a non-zero length is reported instead of panicking.
func splitPacked(packed uint64) (ptr, length uint32, ok bool) {
	if packed>>abi.PtrHighBits == 0 && uint32(packed) != 0 { //nolint:gosec // G115: low half is the length
		return 0, uint32(packed), false //nolint:gosec // G115: low half is the length
	}
	ptr, length = abi.UnpackPtrLen(packed)
	return ptr, length, true
}
