// Package testutil provides common test utilities for wasm-core tests.
package testutil

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertF32Bits asserts bit-for-bit float32 equality, so NaN payloads and
// signed zeros are compared exactly.
func AssertF32Bits(t *testing.T, expected, actual float32, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, math.Float32bits(expected), math.Float32bits(actual), msgAndArgs...)
}
