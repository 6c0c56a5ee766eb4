package typed

import (
	"github.com/pkg/errors"
)

// Vector is a growable sequence of T whose storage is drawn from an Allocator. Growing the vector
// allocates new storage, copies the elements across, and releases the old storage; shrinking it never
// gives memory back. Call Free to return the storage to the pool.
type Vector[T any] struct {
	allocator *Allocator[T]
	storage   []T
	length    int
}

// NewVector creates a vector holding length zero-valued elements
func NewVector[T any](allocator *Allocator[T], length int) (*Vector[T], error) {
	v := &Vector[T]{allocator: allocator}

	err := v.Resize(length)
	if err != nil {
		return nil, err
	}

	return v, nil
}

func (v *Vector[T]) Len() int { return v.length }
func (v *Vector[T]) Cap() int { return len(v.storage) }

// Allocator returns the Allocator the vector draws its storage from
func (v *Vector[T]) Allocator() *Allocator[T] { return v.allocator }

// At returns the element at index, panicking if index is out of range
func (v *Vector[T]) At(index int) T {
	return v.Slice()[index]
}

// Set overwrites the element at index, panicking if index is out of range
func (v *Vector[T]) Set(index int, value T) {
	v.Slice()[index] = value
}

// Slice returns the vector's elements. The slice aliases pool memory and is invalidated by any call
// that grows or frees the vector.
func (v *Vector[T]) Slice() []T {
	return v.storage[:v.length:v.length]
}

// Reserve ensures the vector can hold capacity elements without allocating. If the previous storage
// cannot be released, the vector still moves to the new storage and the release error is returned.
func (v *Vector[T]) Reserve(capacity int) error {
	if capacity <= len(v.storage) {
		return nil
	}

	storage, err := v.allocator.Allocate(capacity)
	if err != nil {
		return err
	}

	copy(storage, v.storage[:v.length])

	previous := v.storage
	v.storage = storage

	err = v.allocator.Release(previous)
	if err != nil {
		return errors.WithMessage(err, "releasing previous vector storage")
	}

	return nil
}

// Resize changes the vector's length. New elements are zero-valued. Shrinking keeps the current storage.
func (v *Vector[T]) Resize(length int) error {
	if length < 0 {
		return errors.Wrapf(ErrSizeOverflow, "vector length %d", length)
	}

	if length < v.length {
		clear(v.storage[length:v.length])
	}

	err := v.Reserve(length)
	if err != nil {
		return err
	}

	v.length = length
	return nil
}

// Push appends value, doubling the vector's storage when it is full
func (v *Vector[T]) Push(value T) error {
	if v.length == len(v.storage) {
		err := v.Reserve(max(2*len(v.storage), 1))
		if err != nil {
			return err
		}
	}

	v.storage[v.length] = value
	v.length++
	return nil
}

// Free releases the vector's storage and empties it. The vector may be reused afterward.
func (v *Vector[T]) Free() error {
	storage := v.storage
	v.storage = nil
	v.length = 0

	return v.allocator.Release(storage)
}
