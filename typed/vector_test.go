//go:build !debug_mem_utils

package typed_test

import (
	"testing"
	"unsafe"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/arenakit/fixedpool/pool"
	"github.com/arenakit/fixedpool/typed"
	"github.com/arenakit/fixedpool/typed/mocks"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func readyVector(t *testing.T, capacity, length int) (*typed.Vector[int32], func() (int, int, int)) {
	t.Helper()

	p := readyPool(t, capacity, 0)
	alloc, err := typed.New[int32](p)
	require.NoError(t, err)

	vec, err := typed.NewVector(alloc, length)
	require.NoError(t, err)

	return vec, func() (int, int, int) {
		return p.TotalFree(), p.MaxFree(), p.TotalAllocated()
	}
}

func TestVector(t *testing.T) {
	vec, stats := readyVector(t, memutils.KiB, 50)

	free, maxFree, allocated := stats()
	require.Equal(t, 824, free)
	require.Equal(t, 824, maxFree)
	require.Equal(t, 200, allocated)
	require.Equal(t, 50, vec.Len())
	require.Equal(t, make([]int32, 50), vec.Slice())
}

func TestVectorResizeKeepsStorage(t *testing.T) {
	vec, stats := readyVector(t, memutils.KiB, 50)

	vec.Set(20, 7)
	require.NoError(t, vec.Resize(10))

	free, maxFree, allocated := stats()
	require.Equal(t, 824, free)
	require.Equal(t, 824, maxFree)
	require.Equal(t, 200, allocated)
	require.Equal(t, 10, vec.Len())
	require.Equal(t, 50, vec.Cap())

	require.NoError(t, vec.Resize(30))
	require.Equal(t, int32(0), vec.At(20))
	_, _, allocated = stats()
	require.Equal(t, 200, allocated)
}

func TestMultipleVectors(t *testing.T) {
	p := readyPool(t, memutils.KiB, 0)
	alloc, err := typed.New[int32](p)
	require.NoError(t, err)

	first, err := typed.NewVector(alloc, 50)
	require.NoError(t, err)
	require.Equal(t, 824, p.TotalFree())
	require.Equal(t, 200, p.TotalAllocated())

	second, err := typed.NewVector(alloc, 50)
	require.NoError(t, err)
	require.Equal(t, 624, p.TotalFree())
	require.Equal(t, 624, p.MaxFree())
	require.Equal(t, 400, p.TotalAllocated())

	require.NoError(t, first.Free())
	require.NoError(t, second.Free())
	require.Equal(t, memutils.KiB, p.TotalFree())
	require.Equal(t, 1, p.FreeRegionsCount())
}

func TestVectorPushGrows(t *testing.T) {
	vec, stats := readyVector(t, memutils.KiB, 0)

	for i := 0; i < 100; i++ {
		require.NoError(t, vec.Push(int32(i)))
	}

	require.Equal(t, 100, vec.Len())
	require.Equal(t, 128, vec.Cap())
	for i := 0; i < 100; i++ {
		require.Equal(t, int32(i), vec.At(i))
	}

	_, _, allocated := stats()
	require.Equal(t, 512, allocated)

	require.NoError(t, vec.Free())
	require.Equal(t, 0, vec.Len())
	free, _, _ := stats()
	require.Equal(t, memutils.KiB, free)
}

func TestVectorGrowthFailureKeepsContents(t *testing.T) {
	vec, stats := readyVector(t, 64, 10)

	for i := 0; i < 10; i++ {
		vec.Set(i, int32(i*i))
	}

	err := vec.Resize(12)
	require.ErrorIs(t, err, memutils.ErrOutOfMemory)
	require.Equal(t, 10, vec.Len())
	require.Equal(t, int32(81), vec.At(9))

	_, _, allocated := stats()
	require.Equal(t, 40, allocated)

	require.ErrorIs(t, vec.Resize(-1), typed.ErrSizeOverflow)
}

func TestVectorReserveKeepsNewStorageWhenReleaseFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)

	first := make([]uint64, 2)
	second := make([]uint64, 4)
	firstPtr := unsafe.Pointer(&first[0])
	secondPtr := unsafe.Pointer(&second[0])

	gomock.InOrder(
		source.EXPECT().Calloc(16).Return(pool.NoHandle, nil),
		source.EXPECT().Pointer(pool.NoHandle).Return(firstPtr),
		source.EXPECT().Calloc(32).Return(pool.NoHandle, nil),
		source.EXPECT().Pointer(pool.NoHandle).Return(secondPtr),
		source.EXPECT().HandleOf(firstPtr).Return(pool.NoHandle),
		source.EXPECT().Release(pool.NoHandle).Return(errors.Wrap(memutils.ErrNotAllocated, "stale handle")),
	)

	alloc, err := typed.New[uint64](source)
	require.NoError(t, err)

	vec, err := typed.NewVector(alloc, 2)
	require.NoError(t, err)
	vec.Set(0, 11)
	vec.Set(1, 22)

	err = vec.Resize(4)
	require.ErrorIs(t, err, memutils.ErrNotAllocated)
	require.ErrorContains(t, err, "releasing previous vector storage")

	require.Equal(t, 4, vec.Cap())
	require.Equal(t, secondPtr, unsafe.Pointer(unsafe.SliceData(vec.Slice())))
	require.Equal(t, uint64(11), vec.At(0))
	require.Equal(t, uint64(22), vec.At(1))
}
