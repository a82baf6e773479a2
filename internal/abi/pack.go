// Package abi defines the wasm-core linear memory ABI.
//
// Buffers cross the boundary as a single i64: pointer in the high 32 bits,
// byte length in the low 32 bits. float32 sequences travel as little-endian
// IEEE-754 bytes. The packing helpers build on every platform so the host
// and guest share one definition; the allocator itself is guest-only.
package abi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// PtrHighBits is the shift applied to the pointer half of a packed value.
const PtrHighBits = 32

// F32Size is the encoded size of one float32.
const F32Size = 4

// ErrMisalignedF32 is returned when a float32 buffer length is not a multiple of F32Size.
var ErrMisalignedF32 = errors.New("abi: float32 buffer length is not a multiple of 4")

// PackPtrLen packs a pointer and length into a single uint64.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its original pointer and length.
// Panics if ptr is 0 and length > 0, indicating an invalid packed value.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> PtrHighBits) //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed)             //nolint:gosec // G115: Packed format stores 32-bit values
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}

// EncodeF32s encodes values as little-endian IEEE-754 bytes, preserving order.
func EncodeF32s(values []float32) []byte {
	buf := make([]byte, len(values)*F32Size)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*F32Size:], math.Float32bits(v))
	}
	return buf
}

// DecodeF32s is the inverse of EncodeF32s. NaN payloads survive bit-for-bit.
func DecodeF32s(data []byte) ([]float32, error) {
	if len(data)%F32Size != 0 {
		return nil, fmt.Errorf("%w (got %d bytes)", ErrMisalignedF32, len(data))
	}
	values := make([]float32, len(data)/F32Size)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*F32Size:]))
	}
	return values, nil
}
