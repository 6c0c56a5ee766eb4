package memutils

import "github.com/pkg/errors"

var (
	// ErrOutOfMemory is returned when no single free region can hold the requested number of bytes.
	// This includes pools that have not been initialized or that have been reset.
	ErrOutOfMemory error = errors.New("no free region large enough for the requested size")
	// ErrInvalidSize is returned for allocation or pool sizes that are zero or negative where a positive
	// size is required
	ErrInvalidSize error = errors.New("size must be positive")
	// ErrNotAllocated is returned by strict-mode releases of an address that is not a live allocation
	ErrNotAllocated error = errors.New("address does not refer to a live allocation")
	// ErrCorruption is returned when the guard bytes written after an allocation have been overwritten
	ErrCorruption error = errors.New("memory corruption detected after allocation")
	// ErrCorruptionDetectionDisabled is returned from corruption checks when memutils was built without
	// the debug_mem_utils build tag
	ErrCorruptionDetectionDisabled error = errors.New("corruption detection requires the debug_mem_utils build tag")
)
