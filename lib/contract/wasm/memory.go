package wasm

import (
	"context"
	"encoding/binary"
	"unicode/utf16"

	wazeroapi "github.com/tetratelabs/wazero/api"

	"boscoin.io/sctester/lib/errors"
)

// AllocFunction is the guest export the host calls for memory to write into.
const AllocFunction = "alloc"

const (
	// AssemblyScript runtime allocator and the class id of its `String`
	ASNewFunction = "__new"
	asStringID    = 2
)

func memoryError(reason string) *errors.Error {
	return errors.ExecutionFailed.Clone().SetData("memory", reason)
}

func readBytes(mod wazeroapi.Module, ptr, size uint32) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	memory := mod.Memory()
	if memory == nil {
		return nil, memoryError("module has no memory")
	}

	view, ok := memory.Read(ptr, size)
	if !ok {
		return nil, memoryError("read out of range")
	}

	b := make([]byte, len(view))
	copy(b, view)

	return b, nil
}

// writeBytes copies `b` into memory obtained from the guest `alloc`.
func writeBytes(ctx context.Context, mod wazeroapi.Module, b []byte) (uint32, error) {
	if len(b) < 1 {
		return 0, nil
	}

	alloc := mod.ExportedFunction(AllocFunction)
	if alloc == nil {
		return 0, memoryError("module does not export alloc")
	}

	results, err := alloc.Call(ctx, uint64(len(b)))
	if err != nil {
		return 0, err
	}
	if len(results) < 1 {
		return 0, memoryError("alloc returned nothing")
	}

	ptr := uint32(results[0])
	memory := mod.Memory()
	if memory == nil || !memory.Write(ptr, b) {
		return 0, memoryError("write out of range")
	}

	return ptr, nil
}

// writeString copies `b` as an AssemblyScript string, UTF-16LE in an object
// obtained from the guest `__new`. A module without `__new` only gets the
// null string, for an empty `b`.
func writeString(ctx context.Context, mod wazeroapi.Module, b []byte) (uint32, error) {
	newFn := mod.ExportedFunction(ASNewFunction)
	if newFn == nil {
		if len(b) < 1 {
			return 0, nil
		}
		return 0, errors.InvalidInvocation.Clone().SetData("memory", "module does not export __new")
	}

	units := utf16.Encode([]rune(string(b)))
	encoded := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(encoded[i*2:], u)
	}

	results, err := newFn.Call(ctx, uint64(len(encoded)), asStringID)
	if err != nil {
		return 0, err
	}
	if len(results) < 1 {
		return 0, memoryError("__new returned nothing")
	}

	ptr := uint32(results[0])
	if len(encoded) < 1 {
		return ptr, nil
	}

	memory := mod.Memory()
	if memory == nil || !memory.Write(ptr, encoded) {
		return 0, memoryError("write out of range")
	}

	return ptr, nil
}

// packBytes returns `ptr<<32 | len`, the way byte results cross the ABI.
func packBytes(ptr uint32, size int) uint64 {
	return uint64(ptr)<<32 | uint64(uint32(size))
}

func UnpackBytes(packed uint64) (ptr, size uint32) {
	return uint32(packed >> 32), uint32(packed)
}
