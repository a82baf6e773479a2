package wasmcore

import (
	"math"

	coreerrors "github.com/reglet-dev/wasm-core/domain/errors"
)

// Greeting template used by Hello.
const (
	GreetingPrefix = "Hello, "
	GreetingSuffix = " from Go!"
)

// Add returns a + b. Overflow wraps silently (two's complement).
func Add(a, b int32) int32 {
	return a + b
}

// AddChecked returns a + b, or an *errors.OverflowError when the true sum
// does not fit in an int32.
func AddChecked(a, b int32) (int32, error) {
	sum := int64(a) + int64(b)
	if sum > math.MaxInt32 || sum < math.MinInt32 {
		return 0, &coreerrors.OverflowError{A: a, B: b}
	}
	return int32(sum), nil
}

// SumF32 accumulates values left to right into a float32 starting at 0.
// The order is significant: float addition is not associative.
func SumF32(values []float32) float32 {
	var sum float32
	for _, v := range values {
		sum += v
	}
	return sum
}

// Hello greets name. The name is used verbatim, including invalid UTF-8.
func Hello(name string) string {
	return GreetingPrefix + name + GreetingSuffix
}
