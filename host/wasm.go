package host

import (
	"context"
	"encoding/json"

	guestlog "github.com/reglet-dev/wasm-core/log"
	"github.com/tetratelabs/wazero/api"
)

// maxLogRecordBytes bounds a single guest log record.
const maxLogRecordBytes = 1 << 20

// registerHostModule instantiates wasmcore_host with log_message.
func (e *Executor) registerHostModule(ctx context.Context) error {
	_, err := e.runtime.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.logMessage), []api.ValueType{api.ValueTypeI64}, []api.ValueType{}).
		Export("log_message").
		Instantiate(ctx)
	return err
}

// logMessage forwards a guest log record to the executor's logger. The
// buffer stays owned by the guest.
func (e *Executor) logMessage(ctx context.Context, mod api.Module, stack []uint64) {
	ptr, length, valid := splitPacked(stack[0])
	if !valid {
		e.logger.ErrorContext(ctx, "wazero: guest log record has a null pointer", "module", mod.Name(), "size", length)
		return
	}
	if length > maxLogRecordBytes {
		e.logger.WarnContext(ctx, "wazero: guest log record too large", "module", mod.Name(), "size", length)
		return
	}

	payload, ok := mod.Memory().Read(ptr, length)
	if !ok {
		e.logger.ErrorContext(ctx, "wazero: failed to read guest log record", "module", mod.Name(), "ptr", ptr, "size", length)
		return
	}

	var wire guestlog.LogMessageWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		e.logger.WarnContext(ctx, "wazero: undecodable guest log record", "module", mod.Name(), "payload", string(payload))
		return
	}

	args := append(wire.Args(), "module", mod.Name())
	if wire.Source != "" {
		args = append(args, "guest_source", wire.Source)
	}
	e.logger.Log(ctx, wire.SlogLevel(), wire.Message, args...)
}
