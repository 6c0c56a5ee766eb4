// Package typed lets Go code hold typed slices and values whose storage comes from a pool.Pool.
package typed

import (
	"reflect"
	"unsafe"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/arenakit/fixedpool/pool"
	cerrors "github.com/cockroachdb/errors"
)

//go:generate mockgen -source allocator.go -destination ./mocks/source.go -package mocks

// Source is the subset of *pool.Pool that an Allocator draws memory from
type Source interface {
	Calloc(size int) (pool.Handle, error)
	Pointer(handle pool.Handle) unsafe.Pointer
	HandleOf(ptr unsafe.Pointer) pool.Handle
	Release(handle pool.Handle) error
}

// AllocationAlignment is the granularity, in bytes, of every request an Allocator makes. Keeping all
// typed requests at this granularity keeps every typed allocation from a pool aligned for any element type.
const AllocationAlignment uint = 8

// Allocator converts element counts into byte requests against a Source and hands the results back as
// slices of T. Memory returned by Allocate is zeroed, matching what make would return.
type Allocator[T any] struct {
	source      Source
	elementSize int
	alignment   uintptr
}

// New creates an Allocator for element type T. It returns ErrPointerElement if T holds Go pointers
// (pointers, slices, strings, maps, channels, funcs or interfaces, at any depth).
func New[T any](source Source) (*Allocator[T], error) {
	var zero T
	elementType := reflect.TypeOf(&zero).Elem()
	if containsPointers(elementType) {
		return nil, cerrors.Wrapf(ErrPointerElement, "element type %s", elementType)
	}

	return &Allocator[T]{
		source:      source,
		elementSize: int(unsafe.Sizeof(zero)),
		alignment:   unsafe.Alignof(zero),
	}, nil
}

func containsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && containsPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointers(t.Field(i).Type) {
				return true
			}
		}
	}

	return false
}

// ElementSize returns the size in bytes of a single T
func (a *Allocator[T]) ElementSize() int {
	return a.elementSize
}

// Equal reports whether memory allocated by a can be released through other, which is the case when
// both draw from the same Source
func (a *Allocator[T]) Equal(other *Allocator[T]) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.source == other.source
}

// PropagateOnMove reports that containers moved into one another should carry their Allocator along
// with their storage. It is always true.
func (a *Allocator[T]) PropagateOnMove() bool {
	return true
}

// Allocate returns a zeroed slice of count elements backed by pool memory. count == 0 returns nil.
//
// Negative counts, and counts whose byte size overflows an int, return ErrSizeOverflow without touching
// the source. If the source cannot satisfy the request, the returned error wraps
// memutils.ErrOutOfMemory.
func (a *Allocator[T]) Allocate(count int) ([]T, error) {
	byteSize, ok := memutils.CheckedMul(count, a.elementSize)
	if !ok || byteSize > maxRequestSize {
		return nil, cerrors.Wrapf(ErrSizeOverflow, "%d elements of %d bytes", count, a.elementSize)
	}
	if count == 0 {
		return nil, nil
	}
	if byteSize == 0 {
		return make([]T, count), nil
	}

	handle, err := a.source.Calloc(memutils.AlignUp(byteSize, AllocationAlignment))
	if err != nil {
		return nil, cerrors.Wrapf(err, "allocating %d elements of %d bytes", count, a.elementSize)
	}

	ptr := a.source.Pointer(handle)
	if ptr == nil {
		return nil, cerrors.AssertionFailedf("source returned no address for handle %s", handle)
	}
	if uintptr(ptr)%a.alignment != 0 {
		releaseErr := a.source.Release(handle)
		return nil, cerrors.CombineErrors(
			cerrors.Wrapf(ErrMisaligned, "address %#x for %d-byte alignment", uintptr(ptr), a.alignment),
			releaseErr,
		)
	}

	return unsafe.Slice((*T)(ptr), count), nil
}

// maxRequestSize is the largest byte size that can still be rounded up to AllocationAlignment
const maxRequestSize = int(^uint(0)>>1) - int(AllocationAlignment)

// Release returns the memory behind elements, which must be a slice returned by Allocate (not a
// reslice that starts later), to the source. Releasing a nil slice does nothing.
func (a *Allocator[T]) Release(elements []T) error {
	if cap(elements) == 0 || a.elementSize == 0 {
		return nil
	}

	handle := a.source.HandleOf(unsafe.Pointer(unsafe.SliceData(elements)))
	return a.source.Release(handle)
}

// AllocateOne returns a pointer to a single zeroed T backed by pool memory
func (a *Allocator[T]) AllocateOne() (*T, error) {
	elements, err := a.Allocate(1)
	if err != nil {
		return nil, err
	}

	return &elements[0], nil
}

// ReleaseOne releases a value returned by AllocateOne
func (a *Allocator[T]) ReleaseOne(value *T) error {
	if value == nil {
		return nil
	}

	return a.Release(unsafe.Slice(value, 1))
}
