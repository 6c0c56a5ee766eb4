package memutils_test

import (
	"math"
	"testing"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestCheckedMul(t *testing.T) {
	product, ok := memutils.CheckedMul(50, 4)
	require.True(t, ok)
	require.Equal(t, 200, product)

	product, ok = memutils.CheckedMul(0, 8)
	require.True(t, ok)
	require.Equal(t, 0, product)

	_, ok = memutils.CheckedMul(math.MaxInt/4+1, 4)
	require.False(t, ok)

	_, ok = memutils.CheckedMul(-1, 4)
	require.False(t, ok)

	_, ok = memutils.CheckedMul[uint64](math.MaxUint64, 2)
	require.False(t, ok)
}

func TestCheckSize(t *testing.T) {
	require.NoError(t, memutils.CheckSize(1, "size"))

	err := memutils.CheckSize(0, "size")
	require.True(t, errors.Is(err, memutils.ErrInvalidSize))
	require.ErrorContains(t, err, "size is 0")
}

func TestDetailedStatisticsAccumulate(t *testing.T) {
	var total, other memutils.DetailedStatistics
	total.Clear()
	other.Clear()

	total.PoolCount = 1
	total.PoolBytes = 128
	total.AddAllocation(10)
	total.AddFreeRegion(118)

	other.PoolCount = 1
	other.PoolBytes = 64
	other.AddAllocation(30)
	other.AddAllocation(4)
	other.AddFreeRegion(30)

	total.AddDetailedStatistics(&other)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			PoolCount:       2,
			PoolBytes:       192,
			AllocationCount: 3,
			AllocationBytes: 44,
		},
		FreeRegionCount:   2,
		AllocationSizeMin: 4,
		AllocationSizeMax: 30,
		FreeRegionSizeMin: 30,
		FreeRegionSizeMax: 118,
	}, total)
	require.Equal(t, 148, total.FreeBytes())
}

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 8))
	require.Equal(t, 8, memutils.AlignUp(1, 8))
	require.Equal(t, 200, memutils.AlignUp(200, 8))
	require.Equal(t, 208, memutils.AlignUp(201, 8))
	require.Equal(t, 7, memutils.AlignUp(7, 1))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(1, "alignment"))
	require.NoError(t, memutils.CheckPow2(uint(64), "alignment"))

	err := memutils.CheckPow2(12, "alignment")
	require.True(t, errors.Is(err, memutils.ErrInvalidSize))
	require.ErrorContains(t, err, "alignment is 12")

	require.Error(t, memutils.CheckPow2(0, "alignment"))
}
