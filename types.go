package wasmcore

import "github.com/reglet-dev/wasm-core/domain/entities"

// Version of the module reported by Describe.
const Version = "0.1.0"

// Export names shared by the guest, the host and the message bindings.
const (
	OpAdd      = "add"
	OpSumF32   = "sum_f32"
	OpHello    = "hello"
	OpDescribe = "describe"
	OpSchema   = "schema"
)

// Re-exported entity types.
type (
	Metadata       = entities.Metadata
	OperationInfo  = entities.OperationInfo
	ErrorDetail    = entities.ErrorDetail
	AddRequest     = entities.AddRequest
	SumF32Request  = entities.SumF32Request
	HelloRequest   = entities.HelloRequest
	AddResponse    = entities.AddResponse
	SumF32Response = entities.SumF32Response
	HelloResponse  = entities.HelloResponse
)

// Describe returns the module metadata, including the wasm signature of
// every export.
func Describe() Metadata {
	return Metadata{
		Name:        "wasm-core",
		Version:     Version,
		Description: "Integer addition, float32 summation and greeting behind a wasm boundary",
		Operations: []OperationInfo{
			{
				Name:        OpAdd,
				Description: "Adds two int32 values with two's-complement wraparound",
				Params:      []string{"i32", "i32"},
				Results:     []string{"i32"},
			},
			{
				Name:        OpSumF32,
				Description: "Sums a little-endian float32 buffer left to right",
				Params:      []string{"i64"},
				Results:     []string{"f32"},
			},
			{
				Name:        OpHello,
				Description: "Returns a greeting for a UTF-8 name",
				Params:      []string{"i64"},
				Results:     []string{"i64"},
			},
		},
	}
}
