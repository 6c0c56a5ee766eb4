package pool

import (
	"context"
	"io"
	"strings"

	"github.com/arenakit/fixedpool/memutils/metadata"
	"golang.org/x/exp/slog"
)

// PoolCreateFlags indicate specific pool behaviors to activate or deactivate
type PoolCreateFlags int32

var poolCreateFlagsMapping = make(map[PoolCreateFlags]string)

func (f PoolCreateFlags) Register(str string) {
	poolCreateFlagsMapping[f] = str
}

func (f PoolCreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for bit := PoolCreateFlags(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}

		name, ok := poolCreateFlagsMapping[bit]
		if !ok {
			name = "Unknown"
		}
		names = append(names, name)
	}

	return strings.Join(names, "|")
}

const (
	// PoolCreateStrictRelease makes Release report addresses that are not live allocations by returning
	// memutils.ErrNotAllocated. Without it, such releases (double frees, stale or foreign addresses)
	// are silently ignored.
	PoolCreateStrictRelease PoolCreateFlags = 1 << iota
	// PoolCreateValidateOperations runs a full consistency check of the pool after every successful
	// allocation and release, logging and returning any error it finds. This is expensive and intended
	// for diagnosing misuse.
	PoolCreateValidateOperations
)

func init() {
	PoolCreateStrictRelease.Register("PoolCreateStrictRelease")
	PoolCreateValidateOperations.Register("PoolCreateValidateOperations")
}

// CreateOptions contains optional settings when creating a pool
type CreateOptions struct {
	// Flags indicates specific pool behaviors to activate or deactivate
	Flags PoolCreateFlags
	// Strategy selects how a free region is chosen for new allocations. The zero value selects
	// metadata.AllocationStrategyMinMemory (best fit).
	Strategy metadata.AllocationStrategy
	// Capacity, if nonzero, is passed to Initialize before New returns. Otherwise the pool starts out
	// empty and Initialize must be called before any allocation can succeed.
	Capacity int

	// MemoryCallbacks is an optional set of callbacks that will be executed when regions are allocated
	// from or returned to this pool
	MemoryCallbacks *MemoryCallbackOptions
}

// New creates a Pool. A nil logger discards all log output.
func New(logger *slog.Logger, options CreateOptions) (*Pool, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	strategy := options.Strategy
	if strategy == 0 {
		strategy = metadata.AllocationStrategyMinMemory
	}

	p := &Pool{
		logger:   logger,
		flags:    options.Flags,
		strategy: strategy,
		metadata: metadata.NewFreeListBlockMetadata(),
	}
	p.callbacks = memoryCallbacks{
		Callbacks: options.MemoryCallbacks,
		Pool:      p,
	}
	p.metadata.Init(0)

	logger.LogAttrs(context.Background(), slog.LevelDebug, "Pool::New",
		slog.String("Flags", options.Flags.String()),
		slog.String("Strategy", strategy.String()),
		slog.Int("Capacity", options.Capacity),
	)

	if options.Capacity != 0 {
		err := p.Initialize(options.Capacity)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}
