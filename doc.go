// Package wasmcore provides three small, pure operations and the types used to
// expose them across a WebAssembly boundary.
//
// The operations are total and stateless:
//
//	Add(a, b)       int32 addition with two's-complement wraparound
//	SumF32(values)  left-to-right float32 accumulation starting from 0
//	Hello(name)     "Hello, " + name + " from Go!"
//
// The same operations are reachable through several bindings, all of which
// implement or consume the Operations interface:
//
//	guest       wasm exports built with GOOS=wasip1 GOARCH=wasm
//	host        a wazero executor that loads the guest and calls its exports
//	mcpserver   MCP tools served over stdio
//	natsservice NATS request/reply subjects
//
// Native runs the operations in-process. host.Instance runs them inside the
// wasm guest. Both are safe for concurrent use.
package wasmcore
