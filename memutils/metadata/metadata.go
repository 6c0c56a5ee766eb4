package metadata

import (
	"unsafe"

	"github.com/arenakit/fixedpool/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BlockMetadata tracks which byte ranges of a single fixed-size block of memory are free and which are
// handed out to callers. It never touches the memory itself: it only hands out offsets, and consumers
// translate those offsets into addresses within whatever storage they own.
type BlockMetadata interface {
	// Init must be called before the BlockMetadata is used. It discards any existing regions and sizes the
	// block in bytes via the size parameter. A block of size 0 is valid but can never satisfy an allocation.
	Init(size int)
	// Size retrieves the size in bytes that the block was initialized with
	Size() int

	// Validate performs internal consistency checks on the metadata. When the implementation is functioning
	// correctly, it should not be possible for this method to return an error, but this may assist in
	// diagnosing issues with the implementation.
	Validate() error
	// AllocationCount returns the number of allocations currently live in the block.
	AllocationCount() int
	// FreeRegionsCount returns the number of distinct free regions in the block. Adjacent free regions
	// are always merged, so this is also a measure of fragmentation.
	FreeRegionsCount() int
	// SumFreeSize returns the number of free bytes in the block.
	SumFreeSize() int
	// SumAllocatedSize returns the number of bytes in the block covered by live allocations.
	SumAllocatedSize() int
	// MaxFreeRegionSize returns the size of the largest free region, or 0 if there are none.
	MaxFreeRegionSize() int
	// MinFreeRegionSize returns the size of the smallest free region, or 0 if there are none.
	MinFreeRegionSize() int
	// IsEmpty will return true if this block has no live allocations
	IsEmpty() bool

	// VisitAllRegions will call the provided callback once for each allocation and free region in
	// the block, in ascending offset order. Returning an error from the callback stops the walk and
	// the error is returned to the caller.
	VisitAllRegions(handleRegion func(region Region, free bool) error) error
	// AllocationAt returns the live allocation beginning at offset, if any.
	AllocationAt(offset int) (Region, bool)

	// AddDetailedStatistics sums this block's allocation statistics into the statistics currently present
	// in the provided memutils.DetailedStatistics object.
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// AddStatistics sums this block's allocation statistics into the statistics currently present in the
	// provided memutils.Statistics object.
	AddStatistics(stats *memutils.Statistics)

	// Clear instantly frees all allocations, leaving a single free region that spans the block
	Clear()
	// BlockJsonData populates a json object with information about this block
	BlockJsonData(json *jwriter.ObjectState)

	// CheckCorruption accepts a pointer to the buffer this block manages and returns an error wrapping
	// memutils.ErrCorruption for the first allocation whose guard bytes were overwritten.
	//
	// Guard bytes are only reserved in debug_mem_utils builds, and the owner of the buffer writes them
	// with memutils.WriteGuard after each allocation.
	CheckCorruption(blockData unsafe.Pointer) error

	// CreateAllocationRequest retrieves an AllocationRequest object indicating where the implementation
	// would place an allocation of allocSize bytes. The boolean return is false, with a nil error, when
	// no free region can hold the allocation. An error is returned only for invalid arguments.
	CreateAllocationRequest(allocSize int, strategy AllocationStrategy) (bool, AllocationRequest, error)
	// Alloc commits an AllocationRequest object, creating the allocation within the block. The implementation
	// must return an error if the request is no longer valid- i.e. the source free region no longer exists
	// or has changed size.
	Alloc(request AllocationRequest) error

	// Free frees the allocation beginning at offset, returning its bytes to the free regions and merging
	// them with any adjacent free region.
	//
	// The implementation must return an error wrapping memutils.ErrNotAllocated if the offset does not
	// map to a live allocation within this block.
	Free(offset int) error
}

// BlockMetadataBase is a simple struct that provides a few shared utilities for BlockMetadata
// implementations in the memutils module.
type BlockMetadataBase struct {
	size int
}

// Init sizes the block in bytes based on the parameter size.
func (m *BlockMetadataBase) Init(size int) {
	m.size = size
}

// Size returns the size of the block in bytes
func (m *BlockMetadataBase) Size() int { return m.size }

// BlockJsonData populates a json object with information about this block
func (m *BlockMetadataBase) BlockJsonData(json *jwriter.ObjectState, unusedBytes, allocationCount, unusedRangeCount int) {
	json.Name("TotalBytes").Int(m.Size())
	json.Name("UnusedBytes").Int(unusedBytes)
	json.Name("Allocations").Int(allocationCount)
	json.Name("UnusedRanges").Int(unusedRangeCount)
}
