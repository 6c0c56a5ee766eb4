// Package pool provides a fixed-capacity memory pool: a single pre-reserved byte buffer from which callers
// allocate and release variable-sized regions by hand.
//
// A Pool is not safe for concurrent use. Callers sharing one between goroutines must guard every
// operation with their own lock.
package pool

import (
	"context"
	"unsafe"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/arenakit/fixedpool/memutils/metadata"
	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// Pool owns a fixed-size backing buffer and hands out regions of it. Allocations are identified by
// Handle values; Bytes and Pointer turn a Handle into a view of the pool's memory. Those views remain
// valid until the allocation is released or the pool is reset or reinitialized.
type Pool struct {
	logger    *slog.Logger
	flags     PoolCreateFlags
	strategy  metadata.AllocationStrategy
	callbacks memoryCallbacks

	buffer   []byte
	epoch    uint32
	metadata metadata.BlockMetadata
}

// Initialize discards the pool's current contents and reserves a new backing buffer of exactly size bytes,
// all of it free. Handles issued before the call are no longer recognized. A size of 0 produces a pool
// on which every allocation fails.
func (p *Pool) Initialize(size int) error {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug, "Pool::Initialize", slog.Int("Capacity", size))

	if size < 0 {
		return cerrors.Wrapf(memutils.ErrInvalidSize, "pool capacity is %d", size)
	}

	p.logUnreleasedMemory()

	p.buffer = make([]byte, size)
	p.nextEpoch()
	p.metadata.Init(size)

	return nil
}

// Reset releases the backing buffer and all allocations, leaving a zero-capacity pool. Allocations fail
// until Initialize is called again. Resetting an empty pool does nothing.
func (p *Pool) Reset() {
	p.logger.Debug("Pool::Reset")

	p.logUnreleasedMemory()

	p.buffer = nil
	p.nextEpoch()
	p.metadata.Init(0)
}

func (p *Pool) nextEpoch() {
	p.epoch++
	if p.epoch == 0 {
		p.epoch = 1
	}
}

func (p *Pool) logUnreleasedMemory() {
	if p.metadata.IsEmpty() {
		return
	}

	err := p.metadata.VisitAllRegions(func(region metadata.Region, free bool) error {
		if free {
			return nil
		}

		p.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
			slog.Int("offset", region.Offset),
			slog.Int("size", region.Size-memutils.DebugMargin),
		)
		return nil
	})
	if err != nil {
		p.logger.LogAttrs(context.Background(),
			slog.LevelError,
			"[UNRELEASED MEMORY] error while iterating unreleased memory",
			slog.Any("error", err))
	}
}

func (p *Pool) base() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(p.buffer))
}

// Allocate reserves size bytes and returns a Handle for them. It returns an error wrapping
// memutils.ErrOutOfMemory when no single free region can hold size bytes, and memutils.ErrInvalidSize
// when size is not positive. The contents of the new region are whatever a previous allocation left there.
//
// With PoolCreateValidateOperations, a failed validation is returned together with the valid Handle of
// the region that was just allocated.
func (p *Pool) Allocate(size int) (Handle, error) {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug, "Pool::Allocate", slog.Int("Size", size))

	err := memutils.CheckSize(size, "size")
	if err != nil {
		return NoHandle, err
	}

	success, allocRequest, err := p.metadata.CreateAllocationRequest(size, p.strategy)
	if err != nil {
		return NoHandle, err
	}
	if !success {
		return NoHandle, cerrors.Wrapf(memutils.ErrOutOfMemory,
			"requested %d bytes, largest free region is %d bytes of %d free",
			size, p.metadata.MaxFreeRegionSize(), p.metadata.SumFreeSize())
	}

	err = p.metadata.Alloc(allocRequest)
	if err != nil {
		return NoHandle, err
	}

	item := allocRequest.Item
	if memutils.DebugMargin > 0 {
		memutils.WriteGuard(p.base(), item.End()-memutils.DebugMargin)
	}

	p.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Allocated region",
		slog.Int("Offset", item.Offset),
		slog.Int("Size", size),
		slog.String("Strategy", p.strategy.String()),
	)

	p.callbacks.Allocate(item.Offset, size)

	handle := Handle{offset: item.Offset, epoch: p.epoch}

	// The region stays allocated when validation fails
	err = p.validateIfRequested()
	if err != nil {
		return handle, err
	}

	return handle, nil
}

// Calloc behaves like Allocate, but zeroes the new region before returning it
func (p *Pool) Calloc(size int) (Handle, error) {
	handle, err := p.Allocate(size)
	if err != nil {
		return handle, err
	}

	clear(p.buffer[handle.offset : handle.offset+size])
	return handle, nil
}

// Release returns the region identified by handle to the pool, merging it with any adjacent free
// regions.
//
// Releasing a handle that is not a live allocation of this pool- NoHandle, a handle that was already
// released, or one issued before the last Initialize or Reset- does nothing and returns nil, unless the
// pool was created with PoolCreateStrictRelease, in which case an error wrapping memutils.ErrNotAllocated
// is returned.
func (p *Pool) Release(handle Handle) error {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug, "Pool::Release", slog.String("Handle", handle.String()))

	region, ok := p.lookup(handle)
	if !ok {
		p.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Ignored release of unknown handle",
			slog.String("Handle", handle.String()))

		if p.flags&PoolCreateStrictRelease != 0 {
			return cerrors.Wrapf(memutils.ErrNotAllocated, "handle %s", handle)
		}
		return nil
	}

	var corruptionErr error
	if memutils.DebugMargin > 0 && !memutils.GuardIntact(p.base(), region.End()-memutils.DebugMargin) {
		p.logger.LogAttrs(context.Background(), slog.LevelError, "MEMORY CORRUPTION DETECTED AFTER FREED ALLOCATION",
			slog.Int("offset", region.Offset),
			slog.Int("size", region.Size-memutils.DebugMargin),
		)
		corruptionErr = cerrors.Wrapf(memutils.ErrCorruption, "allocation at offset %d", region.Offset)
	}

	err := p.metadata.Free(region.Offset)
	if err != nil {
		return err
	}

	p.callbacks.Free(region.Offset, region.Size-memutils.DebugMargin)

	err = p.validateIfRequested()
	if err != nil {
		return err
	}

	return corruptionErr
}

func (p *Pool) validateIfRequested() error {
	if p.flags&PoolCreateValidateOperations == 0 {
		return nil
	}

	err := p.Validate()
	if err != nil {
		p.logger.LogAttrs(context.Background(), slog.LevelError, "pool failed validation", slog.Any("error", err))
	}
	return err
}

func (p *Pool) lookup(handle Handle) (metadata.Region, bool) {
	if !handle.Valid() || handle.epoch != p.epoch {
		return metadata.Region{}, false
	}

	return p.metadata.AllocationAt(handle.offset)
}

// Size returns the number of usable bytes in the allocation identified by handle, or 0 if handle is
// not a live allocation
func (p *Pool) Size(handle Handle) int {
	region, ok := p.lookup(handle)
	if !ok {
		return 0
	}

	return region.Size - memutils.DebugMargin
}

// Bytes returns a view of the allocation identified by handle, or nil if handle is not a live allocation.
// The returned slice's capacity is limited to the allocation, so appending to it never writes into
// neighbouring regions.
func (p *Pool) Bytes(handle Handle) []byte {
	region, ok := p.lookup(handle)
	if !ok {
		return nil
	}

	end := region.End() - memutils.DebugMargin
	return p.buffer[region.Offset:end:end]
}

// Pointer returns the address of the first byte of the allocation identified by handle, or nil if
// handle is not a live allocation
func (p *Pool) Pointer(handle Handle) unsafe.Pointer {
	region, ok := p.lookup(handle)
	if !ok {
		return nil
	}

	return unsafe.Add(p.base(), region.Offset)
}

// HandleOf maps an address previously returned by Pointer back to its Handle. Addresses outside the
// pool's buffer, or that are not the first byte of a live allocation, map to NoHandle.
func (p *Pool) HandleOf(ptr unsafe.Pointer) Handle {
	if ptr == nil || len(p.buffer) == 0 {
		return NoHandle
	}

	base := uintptr(p.base())
	address := uintptr(ptr)
	if address < base || address >= base+uintptr(len(p.buffer)) {
		return NoHandle
	}

	offset := int(address - base)
	if _, ok := p.metadata.AllocationAt(offset); !ok {
		return NoHandle
	}

	return Handle{offset: offset, epoch: p.epoch}
}

// Capacity returns the size in bytes of the backing buffer
func (p *Pool) Capacity() int {
	return p.metadata.Size()
}

// TotalFree returns the number of bytes not covered by a live allocation
func (p *Pool) TotalFree() int {
	return p.metadata.SumFreeSize()
}

// TotalAllocated returns the number of bytes covered by live allocations
func (p *Pool) TotalAllocated() int {
	return p.metadata.SumAllocatedSize()
}

// MaxFree returns the size of the largest free region, which is the largest allocation that can
// currently succeed
func (p *Pool) MaxFree() int {
	return p.metadata.MaxFreeRegionSize()
}

// MinFree returns the size of the smallest free region
func (p *Pool) MinFree() int {
	return p.metadata.MinFreeRegionSize()
}

func (p *Pool) AllocationCount() int {
	return p.metadata.AllocationCount()
}

func (p *Pool) FreeRegionsCount() int {
	return p.metadata.FreeRegionsCount()
}

func (p *Pool) AddStatistics(stats *memutils.Statistics) {
	p.metadata.AddStatistics(stats)
}

func (p *Pool) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	p.metadata.AddDetailedStatistics(stats)
}

// Validate checks that the pool's free and allocated regions exactly tile its buffer
func (p *Pool) Validate() error {
	if len(p.buffer) != p.metadata.Size() {
		return errors.Errorf("the pool's buffer is %d bytes but its metadata tracks %d bytes", len(p.buffer), p.metadata.Size())
	}

	return p.metadata.Validate()
}

// CheckCorruption verifies the guard bytes written after every live allocation. It returns an error
// wrapping memutils.ErrCorruptionDetectionDisabled unless built with the debug_mem_utils tag.
func (p *Pool) CheckCorruption() error {
	p.logger.Debug("Pool::CheckCorruption")

	if memutils.DebugMargin == 0 {
		return memutils.ErrCorruptionDetectionDisabled
	}

	return p.metadata.CheckCorruption(p.base())
}

// PrintDetailedMap writes a JSON object describing the pool and every region within it, in offset order
func (p *Pool) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	p.metadata.BlockJsonData(&objState)

	arrayState := objState.Name("Regions").Array()
	defer arrayState.End()

	_ = p.metadata.VisitAllRegions(func(region metadata.Region, free bool) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(region.Offset)
		if free {
			obj.Name("Type").String("FREE")
			obj.Name("Size").Int(region.Size)
		} else {
			obj.Name("Type").String("ALLOCATION")
			obj.Name("Size").Int(region.Size - memutils.DebugMargin)
		}

		return nil
	})
}
