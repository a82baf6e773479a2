// Package schema provides JSON schema generation for the wasm-core request types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/domain/entities"
)

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
func GenerateSchema(v interface{}) ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(reflect(v), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}

// RequestSchemas returns the request schema of every operation keyed by export name.
func RequestSchemas() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		wasmcore.OpAdd:    reflect(entities.AddRequest{}),
		wasmcore.OpSumF32: reflect(entities.SumF32Request{}),
		wasmcore.OpHello:  reflect(entities.HelloRequest{}),
	}
}

// OperationSchemas returns RequestSchemas as indented JSON.
func OperationSchemas() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(RequestSchemas(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation schemas: %w", err)
	}
	return jsonBytes, nil
}

func reflect(v interface{}) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	return reflector.Reflect(v)
}
