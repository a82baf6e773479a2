package abi

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
		want   uint64
	}{
		{
			name:   "typical values",
			ptr:    0x12345678,
			length: 0xABCDEF00,
			want:   (uint64(0x12345678) << PtrHighBits) | uint64(0xABCDEF00),
		},
		{
			name:   "zero pointer zero length",
			ptr:    0,
			length: 0,
			want:   0,
		},
		{
			name:   "max pointer",
			ptr:    0xFFFFFFFF,
			length: 1,
			want:   (uint64(0xFFFFFFFF) << PtrHighBits) | 1,
		},
		{
			name:   "pointer with empty buffer",
			ptr:    1024,
			length: 0,
			want:   uint64(1024) << PtrHighBits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackPtrLen(tt.ptr, tt.length)
			assert.Equal(t, tt.want, packed, "packed value mismatch")

			gotPtr, gotLen := UnpackPtrLen(packed)
			assert.Equal(t, tt.ptr, gotPtr, "unpacked pointer mismatch")
			assert.Equal(t, tt.length, gotLen, "unpacked length mismatch")
		})
	}
}

func TestPackPtrLen_PanicsOnNullPointerWithLength(t *testing.T) {
	assert.Panics(t, func() {
		PackPtrLen(0, 100)
	}, "expected panic for null pointer with non-zero length")
}

func TestUnpackPtrLen_PanicsOnInvalidPacked(t *testing.T) {
	assert.Panics(t, func() {
		UnpackPtrLen(uint64(1))
	}, "expected panic for invalid packed value")
}

func TestEncodeF32s(t *testing.T) {
	assert.Empty(t, EncodeF32s(nil))
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, EncodeF32s([]float32{1}))
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0}, EncodeF32s([]float32{1, -2}))
}

func TestDecodeF32s(t *testing.T) {
	values, err := DecodeF32s([]byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2}, values)

	empty, err := DecodeF32s(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeF32s_Misaligned(t *testing.T) {
	_, err := DecodeF32s([]byte{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisalignedF32))
}

func TestF32s_PreservesBits(t *testing.T) {
	nanPayload := math.Float32frombits(0x7fc00001)
	in := []float32{0, float32(math.Inf(-1)), math.MaxFloat32, math.SmallestNonzeroFloat32, nanPayload, -1.5}

	out, err := DecodeF32s(EncodeF32s(in))
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, math.Float32bits(in[i]), math.Float32bits(out[i]), "index %d", i)
	}
}
