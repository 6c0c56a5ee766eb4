package main

import (
	"fmt"
	"io"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/arenakit/fixedpool/pool"
	cerrors "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through allocation, release and coalescing step by step",
		Long: `The demo command allocates three 10-byte regions, releases them in the
order middle, first, last, and prints the pool's statistics after each step so the
merging of adjacent free regions can be observed. It finishes by requesting twice the
pool's capacity to show an allocation failing.

Example:
  poolctl demo
  poolctl demo --capacity 64 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runDemo(out, logOut io.Writer) error {
	p, err := newPool(logOut)
	if err != nil {
		return err
	}
	defer p.Reset()

	fmt.Fprintf(out, "pool capacity %d bytes, strategy %s\n", p.Capacity(), strategyName)
	printStats(out, p)

	names := []string{"A", "B", "C"}
	handles := make(map[string]pool.Handle, len(names))
	for _, name := range names {
		h, err := p.Allocate(10)
		if err != nil {
			return cerrors.Wrapf(err, "allocating %s", name)
		}
		handles[name] = h

		fmt.Fprintf(out, "allocate(10) -> %s at offset %d\n", name, h.Offset())
		printStats(out, p)
	}

	for _, name := range []string{"B", "A", "C"} {
		err = p.Release(handles[name])
		if err != nil {
			return cerrors.Wrapf(err, "releasing %s", name)
		}

		fmt.Fprintf(out, "release(%s)\n", name)
		printStats(out, p)
	}

	_, err = p.Allocate(2 * p.Capacity())
	switch {
	case cerrors.Is(err, memutils.ErrOutOfMemory):
		fmt.Fprintf(out, "allocate(%d) -> not available\n", 2*p.Capacity())
	case err != nil:
		return err
	default:
		return cerrors.AssertionFailedf("allocating %d bytes from a %d byte pool succeeded", 2*p.Capacity(), p.Capacity())
	}
	printStats(out, p)

	if jsonOut {
		return printMap(out, p)
	}
	return nil
}
