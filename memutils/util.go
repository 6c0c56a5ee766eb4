package memutils

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// CheckedMul multiplies count by size, returning false if either is negative or the product does not fit
// in an int.
func CheckedMul[T constraints.Integer](count, size T) (int, bool) {
	if count < 0 || size < 0 {
		return 0, false
	}
	if count == 0 || size == 0 {
		return 0, true
	}
	if uint64(count) > math.MaxInt/uint64(size) {
		return 0, false
	}

	return int(count) * int(size), true
}

// CheckSize returns ErrInvalidSize, annotated with the parameter name, if size is not positive
func CheckSize(size int, name string) error {
	if size < 1 {
		return cerrors.Wrapf(ErrInvalidSize, "%s is %d", name, size)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// CheckPow2 returns ErrInvalidSize, annotated with the parameter name, if number is not a power of two
func CheckPow2[T constraints.Integer](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(ErrInvalidSize, "%s is %d, which is not a power of two", name, number)
	}
	return nil
}

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)
