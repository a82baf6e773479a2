// Package errors provides domain-specific error types for wasm-core.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/wasm-core/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// ErrOverflow is matched by every OverflowError via errors.Is.
var ErrOverflow = stdErrors.New("integer overflow")

// DetailedError is implemented by error types that can describe themselves
// as a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    entities.ErrorTypeInternal,
	}
}

// OverflowError reports an int32 addition whose true sum is not representable.
type OverflowError struct {
	A, B int32
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("int32 overflow: %d + %d", e.A, e.B)
}

// Is reports a match against ErrOverflow.
func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}

// ToErrorDetail implements DetailedError.
func (e *OverflowError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorTypeOverflow,
		Code:    "add",
		Details: map[string]any{"a": e.A, "b": e.B},
	}
}

// MemoryError represents a failed access to guest linear memory.
type MemoryError struct {
	Err    error
	Op     string // "read", "write", "allocate", "deallocate"
	Ptr    uint32
	Length uint32
}

func (e *MemoryError) Error() string {
	msg := fmt.Sprintf("guest memory %s failed at 0x%x (%d bytes)", e.Op, e.Ptr, e.Length)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *MemoryError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypeMemory, Code: e.Op}
}

// ExportError represents a missing or failing guest export.
type ExportError struct {
	Err  error
	Name string
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export %q failed: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("export %q not found", e.Name)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the export is missing rather than failing.
func (e *ExportError) NotFound() bool {
	return e.Err == nil
}

// ToErrorDetail implements DetailedError.
func (e *ExportError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypeExport, Code: e.Name}
}

// InputTooLargeError is returned when a payload exceeds the host's limit.
type InputTooLargeError struct {
	Operation string
	Size      int
	Limit     int
}

func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("%s input of %d bytes exceeds limit of %d bytes", e.Operation, e.Size, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *InputTooLargeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypeInput, Code: e.Operation}
}

// ValidationError represents invalid operation arguments.
type ValidationError struct {
	Err       error
	Operation string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s arguments: %v", e.Operation, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ValidationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypeValidation, Code: e.Operation}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypeConfig, Code: e.Field}
}
