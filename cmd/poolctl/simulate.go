package main

import (
	"io"
	"math/rand"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/arenakit/fixedpool/pool"
	cerrors "github.com/cockroachdb/errors"
	"github.com/eapache/queue"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	simulateOps     int
	simulateSeed    int64
	simulateMinSize int
	simulateMaxSize int
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().IntVar(&simulateOps, "ops", 10000, "Number of allocate/release operations to run")
	cmd.Flags().Int64Var(&simulateSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&simulateMinSize, "min-size", 1, "Smallest allocation size in bytes")
	cmd.Flags().IntVar(&simulateMaxSize, "max-size", 16, "Largest allocation size in bytes")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run a random allocate/release workload against a pool",
		Long: `The simulate command runs a seeded random workload against a pool. Each
step either allocates a random number of bytes or releases the oldest live allocation,
and the pool is validated after every step. A summary of successes, failures and peak
usage is printed at the end.

Example:
  poolctl simulate --capacity 65536 --ops 100000 --max-size 512
  poolctl simulate --strategy first-fit --seed 7 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

type simulationResult struct {
	Allocations       int
	FailedAllocations int
	Releases          int
	PeakAllocated     int
	PeakAllocations   int
	MaxFreeRegions    int
}

func runSimulate(out, logOut io.Writer) error {
	if simulateMinSize < 1 || simulateMaxSize < simulateMinSize {
		return errors.Errorf("invalid size range [%d, %d]", simulateMinSize, simulateMaxSize)
	}
	if simulateOps < 0 {
		return errors.Errorf("invalid operation count %d", simulateOps)
	}

	p, err := newPool(logOut)
	if err != nil {
		return err
	}
	defer p.Reset()

	live := queue.New()
	result, err := simulate(p, live, rand.New(rand.NewSource(simulateSeed)))
	if err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)
	printer.Fprintf(out, "%d operations on a %d byte pool (strategy %s, seed %d)\n",
		simulateOps, p.Capacity(), strategyName, simulateSeed)
	printer.Fprintf(out, "  allocations: %d succeeded, %d failed\n", result.Allocations, result.FailedAllocations)
	printer.Fprintf(out, "  releases:    %d\n", result.Releases)
	printer.Fprintf(out, "  peak usage:  %d bytes in %d allocations\n", result.PeakAllocated, result.PeakAllocations)
	printer.Fprintf(out, "  peak fragmentation: %d free regions\n", result.MaxFreeRegions)
	printer.Fprintf(out, "  final:       %d bytes free in %d regions, largest %d bytes\n",
		p.TotalFree(), p.FreeRegionsCount(), p.MaxFree())

	if jsonOut {
		if err := printMap(out, p); err != nil {
			return err
		}
	}

	released, err := drain(p, live)
	if err != nil {
		return err
	}
	printer.Fprintf(out, "  drained:     %d allocations released, %d bytes free in %d regions\n",
		released, p.TotalFree(), p.FreeRegionsCount())
	return nil
}

// simulate runs simulateOps random steps. Live handles are kept in a FIFO so releases always return
// the oldest allocation, which interleaves long- and short-lived regions.
func simulate(p *pool.Pool, live *queue.Queue, rng *rand.Rand) (simulationResult, error) {
	var result simulationResult

	for step := 0; step < simulateOps; step++ {
		if live.Length() == 0 || rng.Intn(5) < 3 {
			size := simulateMinSize + rng.Intn(simulateMaxSize-simulateMinSize+1)

			h, err := p.Allocate(size)
			switch {
			case cerrors.Is(err, memutils.ErrOutOfMemory):
				result.FailedAllocations++
			case err != nil:
				return result, cerrors.Wrapf(err, "step %d", step)
			default:
				result.Allocations++
				live.Add(h)
			}
		} else {
			h := live.Remove().(pool.Handle)
			if err := p.Release(h); err != nil {
				return result, cerrors.Wrapf(err, "step %d", step)
			}
			result.Releases++
		}

		if err := p.Validate(); err != nil {
			return result, cerrors.Wrapf(err, "pool invalid after step %d", step)
		}

		result.PeakAllocated = max(result.PeakAllocated, p.TotalAllocated())
		result.PeakAllocations = max(result.PeakAllocations, p.AllocationCount())
		result.MaxFreeRegions = max(result.MaxFreeRegions, p.FreeRegionsCount())
	}

	return result, nil
}

// drain releases every handle left in live, oldest first
func drain(p *pool.Pool, live *queue.Queue) (int, error) {
	released := 0
	for live.Length() > 0 {
		if err := p.Release(live.Remove().(pool.Handle)); err != nil {
			return released, err
		}
		released++
	}

	return released, nil
}
