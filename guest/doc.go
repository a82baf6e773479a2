// Package guest holds the hand-written wasm exports of wasm-core.
//
// Importing the package from a wasip1 main package exports:
//
//	add(i32, i32) -> i32
//	sum_f32(i64) -> f32        packed ptr/len of little-endian float32 bytes
//	hello(i64) -> i64          packed UTF-8 name in, packed greeting out
//	describe() -> i64          packed JSON metadata
//	schema() -> i64            packed JSON request schemas
//	allocate / deallocate      see internal/abi
//
// Input buffers are written by the host into memory obtained from allocate;
// the export frees them after reading. Returned buffers are freed by the host
// through deallocate once it has copied them out.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o wasmcore.wasm ./cmd/wasmcore-guest
package guest
