//go:build wasip1

package abi

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

// DefaultMaxTotalAllocations caps the memory the guest keeps pinned for the host.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// GCThreshold is the volume of released buffers after which deallocate forces
// a collection. A reactor never idles between export calls, so the runtime
// would otherwise grow linear memory until it runs out.
const GCThreshold = 8 * 1024 * 1024 // 8 MB

// memoryManager tracks every allocation handed to the host. Holding the slice
// pins it so the Go GC cannot collect memory the host is still writing to.
var memoryManager = struct {
	sync.Mutex
	ptrs            map[uint32][]byte // ptr -> slice reference
	totalAllocated  int
	maxTotal        int
	releasedSinceGC int
}{
	ptrs:     make(map[uint32][]byte),
	maxTotal: DefaultMaxTotalAllocations,
}

// allocate reserves memory in the WASM linear memory and returns a pointer.
// Panics if allocation would exceed the configured limit.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.totalAllocated+int(size) > memoryManager.maxTotal {
		panic(fmt.Sprintf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, memoryManager.totalAllocated, memoryManager.maxTotal))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))

	memoryManager.ptrs[ptr] = buf
	memoryManager.totalAllocated += int(size)

	return ptr
}

// deallocate unpins memory so the GC can collect it. Accounting uses the
// stored slice length, not size, so a mismatched size cannot corrupt it.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, size uint32) {
	if release(ptr) {
		runtime.GC()
	}
}

// release unpins ptr and reports whether enough memory has been released
// since the last collection to run one.
func release(ptr uint32) bool {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	storedSlice, exists := memoryManager.ptrs[ptr]
	if !exists {
		return false
	}

	delete(memoryManager.ptrs, ptr)
	memoryManager.totalAllocated -= len(storedSlice)
	if memoryManager.totalAllocated < 0 {
		memoryManager.totalAllocated = 0
	}

	memoryManager.releasedSinceGC += len(storedSlice)
	if memoryManager.releasedSinceGC < GCThreshold {
		return false
	}
	memoryManager.releasedSinceGC = 0
	return true
}

// FreeAllTracked unpins every allocation and collects. Exports call it when
// recovering from a panic, which leaves no buffer the host still owns.
func FreeAllTracked() {
	memoryManager.Lock()
	for ptr := range memoryManager.ptrs {
		delete(memoryManager.ptrs, ptr)
	}
	memoryManager.totalAllocated = 0
	memoryManager.releasedSinceGC = 0
	memoryManager.Unlock()

	runtime.GC()
}

// Stats returns the number of live allocations and their total size.
func Stats() (allocations int, totalBytes int) {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	return len(memoryManager.ptrs), memoryManager.totalAllocated
}

// PtrFromBytes copies data into tracked guest memory and returns it packed.
// The host frees it with the deallocate export once read.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	ptr := allocate(size)
	copyToMemory(ptr, data)
	return PackPtrLen(ptr, size)
}

// BytesFromPtr returns a copy of the packed region of linear memory.
func BytesFromPtr(packed uint64) []byte {
	ptr, length := UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	return readFromMemory(ptr, length)
}

// DeallocatePacked frees a packed region previously handed out by allocate.
// Exports call it on their input once decoded, since input buffers written by
// the host are owned by the guest.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}

// ConsumeBytes reads a packed input buffer and frees it.
func ConsumeBytes(packed uint64) []byte {
	data := BytesFromPtr(packed)
	DeallocatePacked(packed)
	return data
}

func copyToMemory(ptr uint32, data []byte) {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	dest := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), len(data))
	copy(dest, data)
}

func readFromMemory(ptr uint32, length uint32) []byte {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	data := make([]byte, length)
	copy(data, src)
	return data
}
