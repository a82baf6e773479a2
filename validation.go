package wasmcore

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	coreerrors "github.com/reglet-dev/wasm-core/domain/errors"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// DecodeArgs converts loosely typed arguments (for example MCP tool
// arguments) into target and validates it. The map is round-tripped through
// JSON so numeric range checks of the target's field types apply.
func DecodeArgs(operation string, args map[string]any, target any) error {
	jsonBytes, err := json.Marshal(args)
	if err != nil {
		return &coreerrors.ValidationError{Operation: operation, Err: fmt.Errorf("failed to marshal arguments: %w", err)}
	}
	return DecodeJSON(operation, jsonBytes, target)
}

// DecodeJSON unmarshals data into target and validates it.
func DecodeJSON(operation string, data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return &coreerrors.ValidationError{Operation: operation, Err: fmt.Errorf("failed to unmarshal arguments: %w", err)}
	}
	if err := validate.Struct(target); err != nil {
		return &coreerrors.ValidationError{Operation: operation, Err: err}
	}
	return nil
}
