//go:build wasip1

package guest

import (
	"encoding/json"
	"log/slog"
	"math"

	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/application/schema"
	"github.com/reglet-dev/wasm-core/internal/abi"
	_ "github.com/reglet-dev/wasm-core/log" // route slog to the host
)

// recoverExport turns a panic inside an export into a logged error and
// releases every pinned buffer, since a half-finished call cannot tell the host
// which ones it still owns. The caller's zero result signals the failure.
func recoverExport(name string) {
	if r := recover(); r != nil {
		abi.FreeAllTracked()
		slog.Error(name+": recovered from panic", "panic", r)
	}
}

//go:wasmexport add
func add(a, b int32) int32 {
	return wasmcore.Add(a, b)
}

//go:wasmexport sum_f32
func sumF32(packed uint64) (sum float32) {
	sum = float32(math.NaN())
	defer recoverExport("sum_f32")

	values, err := abi.DecodeF32s(abi.ConsumeBytes(packed))
	if err != nil {
		slog.Error("sum_f32: rejecting input", "error", err)
		return float32(math.NaN())
	}
	return wasmcore.SumF32(values)
}

//go:wasmexport hello
func hello(packed uint64) (result uint64) {
	defer recoverExport("hello")

	name := abi.ConsumeBytes(packed)
	return abi.PtrFromBytes([]byte(wasmcore.Hello(string(name))))
}

//go:wasmexport describe
func describe() (result uint64) {
	defer recoverExport("describe")

	data, err := json.Marshal(wasmcore.Describe())
	if err != nil {
		slog.Error("describe: marshal metadata", "error", err)
		return 0
	}
	return abi.PtrFromBytes(data)
}

//go:wasmexport schema
func requestSchema() (result uint64) {
	defer recoverExport("schema")

	data, err := schema.OperationSchemas()
	if err != nil {
		slog.Error("schema: generate", "error", err)
		return 0
	}
	return abi.PtrFromBytes(data)
}
