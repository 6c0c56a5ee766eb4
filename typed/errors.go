package typed

import "github.com/pkg/errors"

var (
	// ErrSizeOverflow is returned when an element count is negative or its size in bytes does not fit in an int
	ErrSizeOverflow error = errors.New("element count overflows the addressable size")
	// ErrPointerElement is returned by New for element types that contain Go pointers. Pool memory is a
	// plain byte buffer that the garbage collector does not scan, so such values cannot live in it.
	ErrPointerElement error = errors.New("element types containing Go pointers cannot be stored in pool memory")
	// ErrMisaligned is returned when the source hands back memory that is not aligned for the element type.
	// This only happens when the same pool also serves unaligned byte allocations.
	ErrMisaligned error = errors.New("allocated memory is not aligned for the element type")
)
