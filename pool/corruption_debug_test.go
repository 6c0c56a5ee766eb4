//go:build debug_mem_utils

package pool

import (
	"testing"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/stretchr/testify/require"
)

func TestGuardBytesHiddenFromCaller(t *testing.T) {
	p := readyPool(t, CreateOptions{Capacity: 128})

	h := mustAllocate(t, p, 10)
	require.Equal(t, 10, p.Size(h))
	require.Len(t, p.Bytes(h), 10)
	require.Equal(t, 10+memutils.DebugMargin, p.TotalAllocated())
	require.Equal(t, 128-10-memutils.DebugMargin, p.TotalFree())
	require.NoError(t, p.CheckCorruption())

	require.NoError(t, p.Release(h))
	require.Equal(t, 128, p.TotalFree())
}

func TestOverrunDetected(t *testing.T) {
	p := readyPool(t, CreateOptions{Capacity: 128, Flags: PoolCreateValidateOperations})

	intact := mustAllocate(t, p, 24)
	h := mustAllocate(t, p, 10)

	p.buffer[h.offset+10] ^= 0xFF

	err := p.CheckCorruption()
	require.ErrorIs(t, err, memutils.ErrCorruption)
	require.ErrorContains(t, err, "offset 40")

	err = p.Release(h)
	require.ErrorIs(t, err, memutils.ErrCorruption)
	require.Equal(t, 1, p.AllocationCount())
	require.NoError(t, p.CheckCorruption())

	require.NoError(t, p.Release(intact))
	require.Equal(t, 0, p.AllocationCount())
	require.Equal(t, 128, p.TotalFree())
}

func TestCheckCorruptionEmptyPool(t *testing.T) {
	p := readyPool(t, CreateOptions{Capacity: 64})
	require.NoError(t, p.CheckCorruption())
}
