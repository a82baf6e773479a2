//go:build wasip1

package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/wasm-core/internal/abi"
)

// host_log_message is provided by the host module registered in host.NewExecutor.
//
//go:wasmimport wasmcore_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

func init() {
	slog.SetDefault(slog.New(NewHandler()))
	slog.Debug("wasm-core guest: slog handler initialized")
}

// Handle serializes a slog.Record and sends it to the host.
func (h *WasmLogHandler) Handle(_ context.Context, record slog.Record) error {
	requestBytes, err := json.Marshal(h.toWire(record))
	if err != nil {
		fmt.Printf("wasm-core: failed to marshal log message for host: %v, original: %s\n", err, record.Message)
		return nil
	}

	packed := abi.PtrFromBytes(requestBytes)
	host_log_message(packed)
	abi.DeallocatePacked(packed)
	return nil
}
