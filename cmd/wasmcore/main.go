package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	wasmcore "github.com/reglet-dev/wasm-core"
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(wasmcore.Version)); err != nil {
		os.Exit(1)
	}
}
