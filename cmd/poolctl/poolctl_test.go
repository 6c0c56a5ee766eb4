//go:build !debug_mem_utils

package main

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/eapache/queue"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	capacity = 128
	strict = false
	strategyName = "best-fit"
	jsonOut = false
	verbose = false
	simulateOps = 10000
	simulateSeed = 1
	simulateMinSize = 1
	simulateMaxSize = 16
}

func TestDemoCommand(t *testing.T) {
	resetFlags()

	var out, logs bytes.Buffer
	require.NoError(t, runDemo(&out, &logs))

	output := out.String()
	require.Contains(t, output, "allocate(10) -> B at offset 10")
	require.Contains(t, output, "free=98 allocated=30")
	require.Contains(t, output, "release(B)\n    free=108 allocated=20 largest=98 smallest=10 regions=2")
	require.Contains(t, output, "release(A)\n    free=118 allocated=10 largest=98 smallest=20 regions=2")
	require.Contains(t, output, "release(C)\n    free=128 allocated=0 largest=128 smallest=128 regions=1")
	require.Contains(t, output, "allocate(256) -> not available")
	require.Empty(t, logs.String())
}

func TestDemoCommandJSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	capacity = 64

	var out, logs bytes.Buffer
	require.NoError(t, runDemo(&out, &logs))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var regionMap map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &regionMap))
	require.Equal(t, float64(64), regionMap["TotalBytes"])
	require.Len(t, regionMap["Regions"], 1)
}

func TestDemoCommandVerbose(t *testing.T) {
	resetFlags()
	verbose = true

	var out, logs bytes.Buffer
	require.NoError(t, runDemo(&out, &logs))
	require.Contains(t, logs.String(), "Pool::Allocate")
	require.Contains(t, logs.String(), "Pool::Release")
}

func TestSimulateCommand(t *testing.T) {
	resetFlags()
	capacity = 1024
	simulateOps = 2000
	simulateMaxSize = 64

	var out, logs bytes.Buffer
	require.NoError(t, runSimulate(&out, &logs))

	output := out.String()
	require.Contains(t, output, "2,000 operations on a 1,024 byte pool")
	require.Contains(t, output, "bytes free in 1 regions")
	require.Empty(t, logs.String())
}

func TestSimulateFirstFit(t *testing.T) {
	resetFlags()
	strategyName = "first-fit"
	capacity = 4096
	simulateOps = 500
	simulateMaxSize = 100

	p, err := newPool(&bytes.Buffer{})
	require.NoError(t, err)

	live := queue.New()
	result, err := simulate(p, live, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Equal(t, live.Length(), p.AllocationCount())
	require.Equal(t, result.Allocations-result.Releases, live.Length())
	require.LessOrEqual(t, result.PeakAllocated, 4096)

	released, err := drain(p, live)
	require.NoError(t, err)
	require.Equal(t, result.Allocations-result.Releases, released)
	require.Equal(t, 4096, p.TotalFree())
}

func TestInvalidArguments(t *testing.T) {
	resetFlags()
	strategyName = "worst-fit"
	require.ErrorContains(t, runDemo(&bytes.Buffer{}, &bytes.Buffer{}), "unknown strategy")

	resetFlags()
	simulateMinSize = 10
	simulateMaxSize = 5
	require.ErrorContains(t, runSimulate(&bytes.Buffer{}, &bytes.Buffer{}), "invalid size range")

	resetFlags()
	capacity = -1
	require.Error(t, runDemo(&bytes.Buffer{}, &bytes.Buffer{}))
}

func TestRootCommand(t *testing.T) {
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"demo", "--capacity", "40"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "pool capacity 40 bytes")
	require.Contains(t, out.String(), "allocate(80) -> not available")
}
