//go:build wasip1

// Command wasmcore-guest is the wasm-core reactor module.
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o wasmcore.wasm ./cmd/wasmcore-guest
package main

import (
	_ "github.com/reglet-dev/wasm-core/guest"
)

// main is required by the toolchain but never runs in a reactor build;
// the host calls _initialize instead.
func main() {}
