package main

import (
	"fmt"
	"io"
	"os"

	"github.com/arenakit/fixedpool/memutils/metadata"
	"github.com/arenakit/fixedpool/pool"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	capacity     int
	strict       bool
	strategyName string
	jsonOut      bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Exercise a fixed-capacity memory pool",
	Long: `poolctl drives a fixed-capacity memory pool through scripted and randomized
allocate/release workloads, printing free-space statistics as it goes. It is useful
for observing fragmentation and coalescing behavior of the pool's placement strategies.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&capacity, "capacity", "c", 128, "Pool capacity in bytes")
	rootCmd.PersistentFlags().
		BoolVar(&strict, "strict", false, "Report releases of unknown handles as errors")
	rootCmd.PersistentFlags().
		StringVar(&strategyName, "strategy", "best-fit", "Placement strategy: best-fit or first-fit")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print the final region map as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every pool operation to stderr")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseStrategy(name string) (metadata.AllocationStrategy, error) {
	switch name {
	case "best-fit", "":
		return metadata.AllocationStrategyMinMemory, nil
	case "first-fit":
		return metadata.AllocationStrategyMinOffset, nil
	default:
		return 0, errors.Errorf("unknown strategy %q: expected best-fit or first-fit", name)
	}
}

// newPool builds a pool from the global flags, logging to logOut
func newPool(logOut io.Writer) (*pool.Pool, error) {
	strategy, err := parseStrategy(strategyName)
	if err != nil {
		return nil, err
	}

	var flags pool.PoolCreateFlags
	if strict {
		flags |= pool.PoolCreateStrictRelease
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	return pool.New(logger, pool.CreateOptions{
		Flags:    flags,
		Strategy: strategy,
		Capacity: capacity,
	})
}

// printStats writes a one-line summary of the pool's free space
func printStats(out io.Writer, p *pool.Pool) {
	fmt.Fprintf(out, "    free=%d allocated=%d largest=%d smallest=%d regions=%d allocations=%d\n",
		p.TotalFree(), p.TotalAllocated(), p.MaxFree(), p.MinFree(), p.FreeRegionsCount(), p.AllocationCount())
}

// printMap writes the pool's detailed region map as a single JSON object
func printMap(out io.Writer, p *pool.Pool) error {
	writer := jwriter.NewWriter()
	p.PrintDetailedMap(&writer)
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "failed to encode region map")
	}

	_, err := fmt.Fprintln(out, string(writer.Bytes()))
	return err
}
