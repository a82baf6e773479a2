//go:build !wasip1

package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// output receives records on non-wasm builds, where no host import exists.
var output io.Writer = os.Stderr

// Handle writes the wire form of the record to stderr on non-wasm builds.
func (h *WasmLogHandler) Handle(_ context.Context, record slog.Record) error {
	data, err := json.Marshal(h.toWire(record))
	if err != nil {
		return fmt.Errorf("marshal log record: %w", err)
	}
	_, err = fmt.Fprintf(output, "%s\n", data)
	return err
}
