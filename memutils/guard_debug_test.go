//go:build debug_mem_utils

package memutils_test

import (
	"testing"
	"unsafe"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/stretchr/testify/require"
)

func TestGuardRoundTrip(t *testing.T) {
	buffer := make([]byte, 40)
	base := unsafe.Pointer(unsafe.SliceData(buffer))

	// odd offset: allocation ends need not be aligned
	memutils.WriteGuard(base, 3)
	require.True(t, memutils.GuardIntact(base, 3))
	require.Equal(t, make([]byte, 3), buffer[:3])
	require.Equal(t, make([]byte, 40-3-memutils.DebugMargin), buffer[3+memutils.DebugMargin:])

	buffer[3+memutils.DebugMargin-1] ^= 0x01
	require.False(t, memutils.GuardIntact(base, 3))
}
