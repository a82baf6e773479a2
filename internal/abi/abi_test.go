//go:build wasip1

package abi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetMemoryManager clears all tracked allocations for test isolation.
func resetMemoryManager() {
	FreeAllTracked()
}

func TestAllocateDeallocate(t *testing.T) {
	resetMemoryManager()

	size := uint32(1024)
	ptr := allocate(size)
	require.NotZero(t, ptr, "allocate returned 0")

	// Verify allocation is tracked
	allocCount, totalBytes := Stats()
	assert.Equal(t, 1, allocCount, "expected 1 tracked allocation")
	assert.Equal(t, int(size), totalBytes, "total bytes mismatch")

	// Write and read data
	data := []byte("hello world")
	copyToMemory(ptr, data)
	readData := readFromMemory(ptr, uint32(len(data)))
	assert.Equal(t, data, readData, "memory read mismatch")

	// Deallocate
	deallocate(ptr, size)

	allocCount, totalBytes = Stats()
	assert.Equal(t, 0, allocCount, "expected 0 tracked allocations after deallocate")
	assert.Equal(t, 0, totalBytes, "expected 0 total bytes after deallocate")
}

func TestAllocate_ZeroSize(t *testing.T) {
	ptr := allocate(0)
	assert.Zero(t, ptr, "allocate(0) should return 0")
}

func TestDeallocate_Idempotent(t *testing.T) {
	resetMemoryManager()

	ptr := allocate(100)
	deallocate(ptr, 100)
	// Second deallocate should not panic or corrupt state
	deallocate(ptr, 100)

	_, totalBytes := Stats()
	assert.GreaterOrEqual(t, totalBytes, 0, "total bytes should not be negative")
}

func TestFreeAllTracked(t *testing.T) {
	resetMemoryManager()

	// Allocate multiple buffers
	allocate(100)
	allocate(200)

	allocCount, _ := Stats()
	require.Equal(t, 2, allocCount, "expected 2 tracked allocations")

	FreeAllTracked()

	allocCount, totalBytes := Stats()
	assert.Equal(t, 0, allocCount, "expected 0 allocations after FreeAllTracked")
	assert.Equal(t, 0, totalBytes, "expected 0 bytes after FreeAllTracked")
}

func TestStats(t *testing.T) {
	resetMemoryManager()

	allocCount, totalBytes := Stats()
	assert.Equal(t, 0, allocCount)
	assert.Equal(t, 0, totalBytes)

	allocate(256)
	allocate(512)

	allocCount, totalBytes = Stats()
	assert.Equal(t, 2, allocCount)
	assert.Equal(t, 768, totalBytes)

	FreeAllTracked()
}

func TestPtrFromBytes(t *testing.T) {
	resetMemoryManager()

	data := []byte("test data")
	packed := PtrFromBytes(data)

	ptr, length := UnpackPtrLen(packed)
	assert.NotZero(t, ptr, "expected non-zero pointer")
	assert.Equal(t, uint32(len(data)), length, "length mismatch")

	// Verify content
	readData := BytesFromPtr(packed)
	assert.Equal(t, data, readData, "data mismatch")

	DeallocatePacked(packed)

	allocCount, _ := Stats()
	assert.Equal(t, 0, allocCount, "expected 0 allocations after cleanup")
}

func TestConsumeBytes(t *testing.T) {
	resetMemoryManager()

	packed := PtrFromBytes([]byte("World"))
	allocCount, _ := Stats()
	require.Equal(t, 1, allocCount)

	assert.Equal(t, []byte("World"), ConsumeBytes(packed))

	allocCount, totalBytes := Stats()
	assert.Equal(t, 0, allocCount, "input buffer should be freed once consumed")
	assert.Equal(t, 0, totalBytes)
}

func TestPtrFromBytes_F32Payload(t *testing.T) {
	resetMemoryManager()

	packed := PtrFromBytes(EncodeF32s([]float32{1.5, -2.5}))
	values, err := DecodeF32s(ConsumeBytes(packed))
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2.5}, values)
}

func TestPtrFromBytes_Empty(t *testing.T) {
	packed := PtrFromBytes(nil)
	assert.Zero(t, packed, "PtrFromBytes(nil) should return 0")

	packed = PtrFromBytes([]byte{})
	assert.Zero(t, packed, "PtrFromBytes([]) should return 0")
}

func TestBytesFromPtr_ZeroValues(t *testing.T) {
	data := BytesFromPtr(0)
	assert.Nil(t, data, "BytesFromPtr(0) should return nil")
}

func TestDeallocatePacked_ZeroValue(t *testing.T) {
	// Should not panic
	DeallocatePacked(0)
}

func TestConcurrency(t *testing.T) {
	resetMemoryManager()

	var wg sync.WaitGroup
	iterations := 100

	wg.Add(iterations)
	for i := 0; i < iterations; i++ {
		go func() {
			defer wg.Done()
			packed := PtrFromBytes([]byte("concurrent test data"))
			_ = BytesFromPtr(packed)
			DeallocatePacked(packed)
		}()
	}
	wg.Wait()

	allocCount, _ := Stats()
	assert.Equal(t, 0, allocCount, "expected 0 allocations after concurrent operations")
}

func TestAllocate_LimitExceeded(t *testing.T) {
	resetMemoryManager()

	memoryManager.Lock()
	memoryManager.maxTotal = 1024
	memoryManager.Unlock()
	t.Cleanup(func() {
		memoryManager.Lock()
		memoryManager.maxTotal = DefaultMaxTotalAllocations
		memoryManager.Unlock()
		FreeAllTracked()
	})

	// This should succeed
	ptr := allocate(512)
	require.NotZero(t, ptr)
	deallocate(ptr, 512)

	// This should panic (exceeds limit)
	assert.Panics(t, func() {
		allocate(2048)
	}, "expected panic when exceeding allocation limit")
}

func releasedSinceGC() int {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	return memoryManager.releasedSinceGC
}

func TestDeallocate_CollectsAfterThreshold(t *testing.T) {
	resetMemoryManager()

	const chunk = 1 << 20
	for i := 1; i < GCThreshold/chunk; i++ {
		deallocate(allocate(chunk), chunk)
		assert.Equal(t, i*chunk, releasedSinceGC())
	}

	deallocate(allocate(chunk), chunk)
	assert.Zero(t, releasedSinceGC(), "crossing the threshold must reset the counter")
}

func TestDeallocate_SustainedTraffic(t *testing.T) {
	resetMemoryManager()

	// Far more than linear memory can hold without collection.
	const size = 1 << 20
	for range 2000 {
		packed := PtrFromBytes(make([]byte, size))
		_ = ConsumeBytes(packed)
	}

	allocCount, totalBytes := Stats()
	assert.Zero(t, allocCount)
	assert.Zero(t, totalBytes)
}

func TestDeallocate_UnknownPointerIgnored(t *testing.T) {
	resetMemoryManager()

	deallocate(12345, 10)
	assert.Zero(t, releasedSinceGC())
}
