package testutil

import "encoding/binary"

// GuestLogMessage is the JSON record the test guest's emit_log export sends
// to wasmcore_host.log_message.
const GuestLogMessage = `{"level":"WARN","message":"from test guest","attrs":[{"key":"k","type":"string","value":"v"}]}`

// Offsets of the test guest's static data. The bump allocator starts at
// GuestHeapBase so static data is never overwritten.
const (
	guestPrefixOffset = 0
	guestSuffixOffset = 16
	guestLogOffset    = 64
	GuestHeapBase     = 1024
)

// GuestModule returns a hand-assembled core wasm module that speaks the same
// ABI as the Go guest: memory, allocate, deallocate, add, sum_f32, hello.
// It also imports wasmcore_host.log_message and exports emit_log to drive it,
// plus a mutable global "freed" counting bytes passed to deallocate.
//
// The module keeps no free list; allocate bumps a pointer from GuestHeapBase.
func GuestModule() []byte {
	return guestModule(false)
}

// FailingHelloModule is GuestModule with a hello export that returns a null
// result, the way the Go guest reports a recovered panic.
func FailingHelloModule() []byte {
	return guestModule(true)
}

func guestModule(failingHello bool) []byte {
	const (
		tAlloc = iota
		tDealloc
		tBinary
		tSum
		tHello
		tLog
		tVoid
	)

	types := vec(
		funcType([]byte{i32}, []byte{i32}),
		funcType([]byte{i32, i32}, nil),
		funcType([]byte{i32, i32}, []byte{i32}),
		funcType([]byte{i64}, []byte{f32}),
		funcType([]byte{i64}, []byte{i64}),
		funcType([]byte{i64}, nil),
		funcType(nil, nil),
	)

	imports := vec(cat(name("wasmcore_host"), name("log_message"), []byte{0x00}, uleb(tLog)))

	// Function index 0 is the import; defined functions start at 1.
	const (
		fLog = iota
		fAllocate
		fDeallocate
		fAdd
		fSum
		fHello
		fEmitLog
	)
	funcs := vec(uleb(tAlloc), uleb(tDealloc), uleb(tBinary), uleb(tSum), uleb(tHello), uleb(tVoid))

	memory := vec([]byte{0x00, 0x02}) // min 2 pages, no max

	globals := vec(
		cat([]byte{i32, 0x01}, i32Const(GuestHeapBase), []byte{opEnd}), // heap pointer
		cat([]byte{i32, 0x01}, i32Const(0), []byte{opEnd}),             // freed bytes
	)

	exports := vec(
		export("memory", kindMemory, 0),
		export("allocate", kindFunc, fAllocate),
		export("deallocate", kindFunc, fDeallocate),
		export("add", kindFunc, fAdd),
		export("sum_f32", kindFunc, fSum),
		export("hello", kindFunc, fHello),
		export("emit_log", kindFunc, fEmitLog),
		export("freed", kindGlobal, 1),
	)

	allocate := body(nil,
		[]byte{opGlobalGet, 0, opGlobalGet, 0, opLocalGet, 0, opI32Add, opGlobalSet, 0},
	)

	deallocate := body(nil,
		[]byte{opGlobalGet, 1, opLocalGet, 1, opI32Add, opGlobalSet, 1},
	)

	add := body(nil,
		[]byte{opLocalGet, 0, opLocalGet, 1, opI32Add},
	)

	// locals: 1 ptr, 2 end (i32), 3 acc (f32)
	sum := body([][2]byte{{2, i32}, {1, f32}},
		unpackPtr(0, 1),
		[]byte{opLocalGet, 1, opLocalGet, 0, opI32WrapI64, opI32Add, opLocalSet, 2},
		[]byte{opBlock, blockEmpty, opLoop, blockEmpty},
		[]byte{opLocalGet, 1, opLocalGet, 2, opI32GeU, opBrIf, 1},
		[]byte{opLocalGet, 3, opLocalGet, 1, opF32Load, 0x02, 0x00, opF32Add, opLocalSet, 3},
		[]byte{opLocalGet, 1}, i32Const(4), []byte{opI32Add, opLocalSet, 1},
		[]byte{opBr, 0, opEnd, opEnd},
		[]byte{opLocalGet, 3},
	)

	prefixLen := int32(len("Hello, "))
	suffixLen := int32(len(" from Go!"))

	// locals: 1 name ptr, 2 name len, 3 out ptr
	hello := body([][2]byte{{3, i32}},
		unpackPtr(0, 1),
		[]byte{opLocalGet, 0, opI32WrapI64, opLocalSet, 2},
		[]byte{opLocalGet, 2}, i32Const(prefixLen+suffixLen), []byte{opI32Add, opCall, fAllocate, opLocalSet, 3},
		// prefix
		[]byte{opLocalGet, 3}, i32Const(guestPrefixOffset), i32Const(prefixLen), memoryCopy(),
		// name
		[]byte{opLocalGet, 3}, i32Const(prefixLen), []byte{opI32Add, opLocalGet, 1, opLocalGet, 2}, memoryCopy(),
		// suffix
		[]byte{opLocalGet, 3}, i32Const(prefixLen), []byte{opI32Add, opLocalGet, 2, opI32Add},
		i32Const(guestSuffixOffset), i32Const(suffixLen), memoryCopy(),
		// (out << 32) | (len + prefix + suffix)
		[]byte{opLocalGet, 3, opI64ExtendI32U}, i64Const(32), []byte{opI64Shl},
		[]byte{opLocalGet, 2}, i32Const(prefixLen+suffixLen), []byte{opI32Add, opI64ExtendI32U, opI64Or},
	)

	if failingHello {
		hello = body(nil, i64Const(0))
	}

	emitLog := body(nil,
		i64Const(int64(guestLogOffset)<<32|int64(len(GuestLogMessage))),
		[]byte{opCall, fLog},
	)

	code := vec(allocate, deallocate, add, sum, hello, emitLog)

	data := vec(
		dataSegment(guestPrefixOffset, []byte("Hello, ")),
		dataSegment(guestSuffixOffset, []byte(" from Go!")),
		dataSegment(guestLogOffset, []byte(GuestLogMessage)),
	)

	return cat(
		header(),
		section(secType, types),
		section(secImport, imports),
		section(secFunction, funcs),
		section(secMemory, memory),
		section(secGlobal, globals),
		section(secExport, exports),
		section(secCode, code),
		section(secData, data),
	)
}

// AddOnlyModule returns a module exporting only add, with no memory or
// allocator. Hosts must reject it as incomplete.
func AddOnlyModule() []byte {
	return cat(
		header(),
		section(secType, vec(funcType([]byte{i32, i32}, []byte{i32}))),
		section(secFunction, vec(uleb(0))),
		section(secExport, vec(export("add", kindFunc, 0))),
		section(secCode, vec(body(nil, []byte{opLocalGet, 0, opLocalGet, 1, opI32Add}))),
	)
}

const (
	i32 byte = 0x7f
	i64 byte = 0x7e
	f32 byte = 0x7d

	secType     byte = 1
	secImport   byte = 2
	secFunction byte = 3
	secMemory   byte = 5
	secGlobal   byte = 6
	secExport   byte = 7
	secCode     byte = 10
	secData     byte = 11

	kindFunc   byte = 0x00
	kindMemory byte = 0x02
	kindGlobal byte = 0x03

	blockEmpty byte = 0x40

	opBlock         byte = 0x02
	opLoop          byte = 0x03
	opEnd           byte = 0x0b
	opBr            byte = 0x0c
	opBrIf          byte = 0x0d
	opCall          byte = 0x10
	opLocalGet      byte = 0x20
	opLocalSet      byte = 0x21
	opGlobalGet     byte = 0x23
	opGlobalSet     byte = 0x24
	opF32Load       byte = 0x2a
	opI32Const      byte = 0x41
	opI64Const      byte = 0x42
	opI32GeU        byte = 0x4f
	opI32Add        byte = 0x6a
	opI64Or         byte = 0x84
	opI64Shl        byte = 0x86
	opI64ShrU       byte = 0x88
	opF32Add        byte = 0x92
	opI32WrapI64    byte = 0xa7
	opI64ExtendI32U byte = 0xad
	opPrefixFC      byte = 0xfc
	opMemoryCopy    byte = 0x0a
)

func header() []byte {
	h := []byte{0x00, 0x61, 0x73, 0x6d}
	return binary.LittleEndian.AppendUint32(h, 1)
}

func section(id byte, payload []byte) []byte {
	return cat([]byte{id}, uleb(uint32(len(payload))), payload)
}

func vec(items ...[]byte) []byte {
	return cat(append([][]byte{uleb(uint32(len(items)))}, items...)...)
}

func name(s string) []byte {
	return cat(uleb(uint32(len(s))), []byte(s))
}

func funcType(params, results []byte) []byte {
	return cat([]byte{0x60}, uleb(uint32(len(params))), params, uleb(uint32(len(results))), results)
}

func export(n string, kind byte, index uint32) []byte {
	return cat(name(n), []byte{kind}, uleb(index))
}

// body encodes a function body; locals are (count, type) groups.
func body(locals [][2]byte, instrs ...[]byte) []byte {
	decl := uleb(uint32(len(locals)))
	for _, l := range locals {
		decl = append(decl, l[0], l[1])
	}
	fn := cat(append(append([][]byte{decl}, instrs...), []byte{opEnd})...)
	return cat(uleb(uint32(len(fn))), fn)
}

func dataSegment(offset int32, content []byte) []byte {
	return cat([]byte{0x00}, i32Const(offset), []byte{opEnd}, uleb(uint32(len(content))), content)
}

// unpackPtr stores the high half of the i64 local src into the i32 local dst.
func unpackPtr(src, dst byte) []byte {
	return cat([]byte{opLocalGet, src}, i64Const(32), []byte{opI64ShrU, opI32WrapI64, opLocalSet, dst})
}

func memoryCopy() []byte {
	return []byte{opPrefixFC, opMemoryCopy, 0x00, 0x00}
}

func i32Const(v int32) []byte {
	return cat([]byte{opI32Const}, sleb(int64(v)))
}

func i64Const(v int64) []byte {
	return cat([]byte{opI64Const}, sleb(v))
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func cat(parts ...[]byte) []byte {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
