package entities

// AddRequest carries the operands of add.
// Pointer fields distinguish a missing operand from a zero one.
type AddRequest struct {
	A *int32 `json:"a" validate:"required" jsonschema:"required,description=First operand"`
	B *int32 `json:"b" validate:"required" jsonschema:"required,description=Second operand"`
}

// SumF32Request carries the sequence to accumulate. An empty list is valid.
type SumF32Request struct {
	Values []float32 `json:"values" validate:"required" jsonschema:"required,description=Values summed left to right"`
}

// HelloRequest carries the name to greet. An empty name is valid.
type HelloRequest struct {
	Name *string `json:"name" validate:"required" jsonschema:"required,description=Name echoed verbatim"`
}

// AddResponse is the result of add.
type AddResponse struct {
	Sum int32 `json:"sum" yaml:"sum"`
}

// SumF32Response is the result of sum_f32.
type SumF32Response struct {
	Sum float32 `json:"sum" yaml:"sum"`
}

// HelloResponse is the result of hello.
type HelloResponse struct {
	Greeting string `json:"greeting" yaml:"greeting"`
}
