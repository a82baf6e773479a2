// Package host runs the wasm-core guest module under wazero.
//
// An Executor owns a wazero runtime with WASI preview1 and the
// wasmcore_host import module, which forwards guest log records to the
// executor's slog.Logger. Executor.Load instantiates a guest and returns an
// Instance, the wasm-backed implementation of wasmcore.Operations. The
// Instance handles the packed i64 ABI: inputs are written into memory
// obtained from the guest's allocate export, and outputs returned by the
// guest are copied out and released through deallocate.
//
// Loader wraps an Executor and a module Source and instantiates the guest
// lazily on first use, sharing the instance (or the load error) among all
// callers.
package host
