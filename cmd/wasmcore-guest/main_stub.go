//go:build !wasip1

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "wasmcore-guest only runs as WebAssembly:")
	fmt.Fprintln(os.Stderr, "  GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o wasmcore.wasm ./cmd/wasmcore-guest")
	os.Exit(1)
}
