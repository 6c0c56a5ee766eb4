//go:build debug_mem_utils

package memutils

import (
	"encoding/binary"
	"unsafe"
)

const (
	// DebugMargin is the number of guard bytes reserved at the tail of every pool allocation. Callers
	// never see them: Size and Bytes report the requested size only.
	DebugMargin int = 16

	guardWord uint32 = 0x7F84E666
)

func guardBytes(buffer unsafe.Pointer, offset int) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(buffer, offset)), DebugMargin)
}

// WriteGuard fills the DebugMargin bytes starting at offset within buffer with the guard pattern
func WriteGuard(buffer unsafe.Pointer, offset int) {
	guard := guardBytes(buffer, offset)
	for i := 0; i < len(guard); i += 4 {
		binary.LittleEndian.PutUint32(guard[i:], guardWord)
	}
}

// GuardIntact reports whether the guard pattern written by WriteGuard at offset is unchanged. A false
// result means something wrote past the end of the allocation that precedes the guard.
func GuardIntact(buffer unsafe.Pointer, offset int) bool {
	guard := guardBytes(buffer, offset)
	for i := 0; i < len(guard); i += 4 {
		if binary.LittleEndian.Uint32(guard[i:]) != guardWord {
			return false
		}
	}

	return true
}

// DebugValidate panics if validatable is inconsistent
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}
